package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"cryptoalert/internal/external"
	"cryptoalert/internal/notifications"
	"cryptoalert/internal/repository"
)

type Options struct {
	Port            int
	APIKey          string
	CORSAllowOrigin string
	MaxHistoryLimit int
}

type Server struct {
	pool       *pgxpool.Pool
	alertRepo  *repository.AlertRepo
	priceRepo  *repository.PriceRepo
	coingecko  *external.CoinGeckoClient
	email      *notifications.EmailSender
	httpServer *http.Server
	apiKey     string
	maxLimit   int
}

func NewServer(pool *pgxpool.Pool, coingecko *external.CoinGeckoClient, email *notifications.EmailSender, opts Options) *Server {
	if opts.MaxHistoryLimit <= 0 {
		opts.MaxHistoryLimit = 1000
	}
	s := &Server{
		pool:      pool,
		alertRepo: repository.NewAlertRepo(pool),
		priceRepo: repository.NewPriceRepo(pool),
		coingecko: coingecko,
		email:     email,
		apiKey:    opts.APIKey,
		maxLimit:  opts.MaxHistoryLimit,
	}

	mux := http.NewServeMux()

	// Price routes
	mux.HandleFunc("GET /api/price/{coinId}", s.handleGetPrice)
	mux.HandleFunc("GET /api/coins", s.handleListCoins)
	mux.HandleFunc("GET /api/history/{coinId}", s.handleHistory)

	// Alert routes
	mux.HandleFunc("POST /api/alerts", s.handleCreateAlert)
	mux.HandleFunc("GET /api/alerts", s.handleListAlerts)
	mux.HandleFunc("GET /api/alerts/coin/{coinId}", s.handleAlertsByCoin)
	mux.HandleFunc("DELETE /api/alerts/{id}", s.handleDeleteAlert)

	// Email
	mux.HandleFunc("POST /api/test-email", s.handleTestEmail)

	// Health and metrics (no auth required)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := s.authMiddleware(corsMiddleware(mux, opts.CORSAllowOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Infof("REST API server started on http://localhost%s", s.httpServer.Addr)
	if s.apiKey != "" {
		log.Info("API authentication: enabled (Bearer token)")
	} else {
		log.Info("API authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/api/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request helpers ---

func (s *Server) parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > s.maxLimit {
		return s.maxLimit
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
