package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"cryptoalert/internal/models"
)

type createAlertRequest struct {
	CoinID      string  `json:"coinId"`
	CoinName    string  `json:"coinName"`
	TargetPrice float64 `json:"targetPrice"`
	Condition   string  `json:"condition"`
	Email       string  `json:"email"`
}

func (req *createAlertRequest) validate() string {
	switch {
	case req.CoinID == "":
		return "coinId is required"
	case req.CoinName == "":
		return "coinName is required"
	case req.TargetPrice <= 0:
		return "targetPrice must be a positive number"
	case !models.ValidCondition(req.Condition):
		return "condition must be 'above' or 'below'"
	case req.Email == "":
		return "email is required"
	}
	return ""
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	alert, err := s.alertRepo.Create(r.Context(), req.CoinID, req.CoinName, req.TargetPrice, req.Condition, req.Email)
	if err != nil {
		log.Errorf("failed to create alert: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create alert")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Alert created successfully",
		"alertId": alert.ID,
	})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.alertRepo.GetActive(r.Context())
	if err != nil {
		log.Errorf("failed to list alerts: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAlertsByCoin(w http.ResponseWriter, r *http.Request) {
	coinID := r.PathValue("coinId")
	alerts, err := s.alertRepo.GetActiveByCoin(r.Context(), coinID)
	if err != nil {
		log.Errorf("failed to list alerts for %s: %v", coinID, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	n, err := s.alertRepo.Deactivate(r.Context(), id)
	if err != nil {
		log.Errorf("failed to deactivate alert %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete alert")
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert deleted successfully"})
}
