package core

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidScenario = errors.New("invalid expense scenario")

type (
	// ParticipantSetting is the per-person what-if knob kept in a saved
	// simulation: whether the person still earns, and at what multiple of
	// their real income.
	ParticipantSetting struct {
		Active           bool    `json:"active"`
		IncomeMultiplier float64 `json:"incomeMultiplier"`
	}

	// SavedSimulation persists only the scenario parameters, never a data
	// snapshot: re-running one re-reads the live people, categories and
	// transactions, so results drift as the underlying data changes.
	SavedSimulation struct {
		ID                  string                        `json:"id"`
		Name                string                        `json:"name"`
		Scenario            ExpenseScenario               `json:"scenario"`
		ParticipantSettings map[string]ParticipantSetting `json:"participantSettings,omitempty"`
		IncludeOverrides    map[string]bool               `json:"includeOverrides,omitempty"`
		ManualExpenses      []SimulatedExpense            `json:"manualExpenses,omitempty"`
		CustomTotal         float64                       `json:"customTotal,omitempty"`
		EmergencyFund       float64                       `json:"emergencyFund"`
		TargetFund          float64                       `json:"targetFund,omitempty"`
		Months              int                           `json:"months,omitempty"`
		CreatedAt           time.Time                     `json:"createdAt"`
		UpdatedAt           time.Time                     `json:"updatedAt"`
	}
)

func (s SavedSimulation) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	switch s.Scenario {
	case ScenarioCurrentMonth, ScenarioMinimalist, ScenarioAverage, ScenarioCustom:
	default:
		return ErrInvalidScenario
	}
	return nil
}

// Input materializes the saved parameters against the live data the caller
// just fetched. People without a stored setting participate at their real
// income.
func (s SavedSimulation) Input(people []Person, categories []Category, transactions []Transaction) SimulationInput {
	participants := make([]Participant, 0, len(people))
	for _, p := range people {
		setting, ok := s.ParticipantSettings[p.ID]
		if !ok {
			setting = ParticipantSetting{Active: true, IncomeMultiplier: 1}
		}
		participants = append(participants, Participant{
			Person:           p,
			Active:           setting.Active,
			IncomeMultiplier: setting.IncomeMultiplier,
		})
	}
	return SimulationInput{
		Participants:     participants,
		Categories:       categories,
		Transactions:     transactions,
		EmergencyFund:    s.EmergencyFund,
		Scenario:         s.Scenario,
		IncludeOverrides: s.IncludeOverrides,
		ManualExpenses:   s.ManualExpenses,
		CustomTotal:      s.CustomTotal,
		TargetFund:       s.TargetFund,
		Months:           s.Months,
	}
}
