package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"contas/internal/services"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeBody parses a JSON request body into dst, rejecting unknown fields
// so typos in patch bodies fail loudly instead of silently doing nothing.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parsePeriod reads year/month query parameters, defaulting to the current
// month when absent. Month must be 1-12 when given.
func parsePeriod(query url.Values, now func() time.Time) (year, month int, err error) {
	t := now()
	year, month = t.Year(), int(t.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month %d out of range 1-12", month)
	}
	if year < 1 {
		return 0, 0, fmt.Errorf("year %d out of range", year)
	}
	return year, month, nil
}

// parsePeriodList parses the comma-separated "periods" parameter of the
// batch health endpoint. Each item is YYYY-MM.
func parsePeriodList(raw string) ([]services.Period, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("periods parameter is required")
	}

	parts := strings.Split(raw, ",")
	if len(parts) > services.BatchHealthLimit {
		return nil, fmt.Errorf("at most %d periods per request, got %d", services.BatchHealthLimit, len(parts))
	}

	periods := make([]services.Period, 0, len(parts))
	for _, part := range parts {
		t, err := time.Parse("2006-01", strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid period %q, want YYYY-MM", strings.TrimSpace(part))
		}
		periods = append(periods, services.Period{Year: t.Year(), Month: int(t.Month())})
	}
	return periods, nil
}
