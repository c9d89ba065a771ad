package http

import (
	"net/http"

	"contas/internal/core"
)

type simulationRequest struct {
	Name                string                             `json:"name"`
	Scenario            core.ExpenseScenario               `json:"scenario"`
	ParticipantSettings map[string]core.ParticipantSetting `json:"participantSettings"`
	IncludeOverrides    map[string]bool                    `json:"includeOverrides"`
	ManualExpenses      []core.SimulatedExpense            `json:"manualExpenses"`
	CustomTotal         float64                            `json:"customTotal"`
	EmergencyFund       float64                            `json:"emergencyFund"`
	TargetFund          float64                            `json:"targetFund"`
	Months              int                                `json:"months"`
}

func (req simulationRequest) toParams() core.SavedSimulation {
	return core.SavedSimulation{
		Name:                req.Name,
		Scenario:            req.Scenario,
		ParticipantSettings: req.ParticipantSettings,
		IncludeOverrides:    req.IncludeOverrides,
		ManualExpenses:      req.ManualExpenses,
		CustomTotal:         req.CustomTotal,
		EmergencyFund:       req.EmergencyFund,
		TargetFund:          req.TargetFund,
		Months:              req.Months,
	}
}

// handleRunSimulation projects a scenario without persisting it.
func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	result, err := s.sims.Run(r.Context(), req.toParams())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	sims, err := s.sims.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sims)
}

func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	created, err := s.sims.Save(r.Context(), req.toParams())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	sim, err := s.sims.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) handleUpdateSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	sim := req.toParams()
	sim.ID = r.PathValue("id")
	if err := s.sims.Update(r.Context(), sim); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (s *Server) handleDeleteSimulation(w http.ResponseWriter, r *http.Request) {
	if err := s.sims.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

// handleRunSavedSimulation re-runs a stored parameter set against the live
// ledger data.
func (s *Server) handleRunSavedSimulation(w http.ResponseWriter, r *http.Request) {
	result, err := s.sims.RunSaved(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
