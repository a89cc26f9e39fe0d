package api

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"cryptoalert/internal/external"
	"cryptoalert/internal/models"
)

const maxCoinsListed = 100

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	coinID := r.PathValue("coinId")

	quote, err := s.coingecko.GetPrice(r.Context(), coinID)
	if err != nil {
		if errors.Is(err, external.ErrCoinNotFound) {
			writeError(w, http.StatusNotFound, "Coin not found")
			return
		}
		log.Errorf("failed to fetch price for %s: %v", coinID, err)
		writeError(w, http.StatusBadGateway, "failed to fetch price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"coin":      coinID,
		"price":     quote.Price,
		"change24h": quote.Change24h,
	})
}

func (s *Server) handleListCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := s.coingecko.GetCoins(r.Context())
	if err != nil {
		log.Errorf("failed to fetch coins list: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch coins list")
		return
	}
	if len(coins) > maxCoinsListed {
		coins = coins[:maxCoinsListed]
	}
	writeJSON(w, http.StatusOK, coins)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	coinID := r.PathValue("coinId")
	limit := s.parseLimit(r, 100)

	history, err := s.priceRepo.GetHistory(r.Context(), coinID, limit)
	if err != nil {
		log.Errorf("failed to fetch history for %s: %v", coinID, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch price history")
		return
	}
	if history == nil {
		history = []models.PricePoint{}
	}
	writeJSON(w, http.StatusOK, history)
}
