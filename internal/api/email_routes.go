package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type testEmailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if !s.email.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "email service not configured")
		return
	}

	if err := s.email.SendTest(req.Email); err != nil {
		log.Errorf("failed to send test email to %s: %v", req.Email, err)
		writeError(w, http.StatusBadGateway, "failed to send test email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Test email sent"})
}
