package http

import (
	"net/http"
)

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r.URL.Query(), s.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	report, err := s.reports.MonthlyReport(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReportSettlement(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r.URL.Query(), s.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	report, err := s.reports.MonthlyReport(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Settlement)
}

func (s *Server) handleReportOutliers(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r.URL.Query(), s.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	report, err := s.reports.MonthlyReport(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Outliers)
}

// handleReportHealth returns health scores for up to BatchHealthLimit
// periods in one round trip.
func (s *Server) handleReportHealth(w http.ResponseWriter, r *http.Request) {
	periods, err := parsePeriodList(r.URL.Query().Get("periods"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	scores, err := s.reports.BatchHealth(r.Context(), periods)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

type closeMonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (s *Server) handleCloseMonth(w http.ResponseWriter, r *http.Request) {
	var req closeMonthRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 1 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "year and month are required")
		return
	}

	if err := s.ledger.CloseMonth(r.Context(), req.Year, req.Month); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"year": req.Year, "month": req.Month})
}
