package alerts

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"cryptoalert/internal/metrics"
	"cryptoalert/internal/models"
)

// AlertStore is the slice of the repository the evaluator needs.
type AlertStore interface {
	GetActive(ctx context.Context) ([]models.Alert, error)
	MarkTriggered(ctx context.Context, id int64) (int64, error)
}

type PriceStore interface {
	Record(ctx context.Context, coinID string, price float64) (*models.PricePoint, error)
}

type PriceSource interface {
	GetPrices(ctx context.Context, coinIDs []string) (map[string]models.Quote, error)
}

type Notifier interface {
	SendAlert(alert models.Alert, currentPrice float64) bool
}

// Evaluator runs one evaluation pass: load eligible alerts, fetch current
// prices in a single batched call, record history, and trigger alerts whose
// condition is met. It keeps no state across passes beyond the store.
type Evaluator struct {
	alerts   AlertStore
	prices   PriceStore
	source   PriceSource
	notifier Notifier
	metrics  *metrics.AlertMetrics

	mu      sync.Mutex
	running bool
}

func NewEvaluator(alertStore AlertStore, priceStore PriceStore, source PriceSource, notifier Notifier, m *metrics.AlertMetrics) *Evaluator {
	return &Evaluator{
		alerts:   alertStore,
		prices:   priceStore,
		source:   source,
		notifier: notifier,
		metrics:  m,
	}
}

// ShouldTrigger reports whether a price crossing fires the condition.
// Both comparisons are inclusive: a price exactly at the target fires.
func ShouldTrigger(condition string, currentPrice, targetPrice float64) bool {
	switch condition {
	case models.ConditionAbove:
		return currentPrice >= targetPrice
	case models.ConditionBelow:
		return currentPrice <= targetPrice
	}
	return false
}

// RunPass executes one evaluation pass. Passes are serialized: if one is
// already in flight the call is skipped, not queued. A failed alert load or
// price fetch aborts the pass; failures past that point are isolated
// per coin / per alert.
func (e *Evaluator) RunPass(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		e.metrics.PassesSkipped.Inc()
		log.Warn("evaluation pass already in progress, skipping")
		return nil
	}
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	eligible, err := e.alerts.GetActive(ctx)
	if err != nil {
		e.metrics.PassesFailed.Inc()
		return fmt.Errorf("load active alerts: %w", err)
	}
	if len(eligible) == 0 {
		log.Debug("no active alerts, nothing to evaluate")
		e.metrics.PassesCompleted.Inc()
		return nil
	}

	coinIDs := distinctCoinIDs(eligible)

	// One provider round trip per pass, however many alerts share a coin.
	quotes, err := e.source.GetPrices(ctx, coinIDs)
	if err != nil {
		e.metrics.FetchErrors.Inc()
		e.metrics.PassesFailed.Inc()
		return fmt.Errorf("fetch prices: %w", err)
	}

	for _, coinID := range coinIDs {
		quote, ok := quotes[coinID]
		if !ok {
			continue
		}
		if _, err := e.prices.Record(ctx, coinID, quote.Price); err != nil {
			log.WithField("coin", coinID).Errorf("failed to record price history: %v", err)
		}
	}

	triggered := 0
	for _, alert := range eligible {
		quote, ok := quotes[alert.CoinID]
		if !ok {
			log.WithFields(log.Fields{"alert_id": alert.ID, "coin": alert.CoinID}).
				Debug("no price for coin, skipping alert")
			continue
		}

		if !ShouldTrigger(alert.Condition, quote.Price, alert.TargetPrice) {
			continue
		}

		// Persist the transition before notifying. If this fails the alert
		// stays eligible for the next pass and must not be notified now,
		// or a retriggering pass would email twice.
		n, err := e.alerts.MarkTriggered(ctx, alert.ID)
		if err != nil {
			log.WithField("alert_id", alert.ID).Errorf("failed to mark alert triggered: %v", err)
			continue
		}
		if n == 0 {
			log.WithField("alert_id", alert.ID).Warn("alert vanished before triggering")
			continue
		}

		triggered++
		e.metrics.AlertsTriggered.Inc()
		log.WithFields(log.Fields{
			"alert_id": alert.ID,
			"coin":     alert.CoinID,
			"price":    quote.Price,
			"target":   alert.TargetPrice,
		}).Infof("alert triggered for %s", alert.CoinName)

		if e.notifier.SendAlert(alert, quote.Price) {
			e.metrics.EmailsSent.Inc()
		} else {
			e.metrics.EmailsFailed.Inc()
		}
	}

	e.metrics.PassesCompleted.Inc()
	log.WithFields(log.Fields{
		"alerts":    len(eligible),
		"coins":     len(coinIDs),
		"triggered": triggered,
	}).Info("evaluation pass completed")
	return nil
}

// distinctCoinIDs collapses duplicates, preserving first-seen order.
func distinctCoinIDs(alerts []models.Alert) []string {
	seen := make(map[string]struct{}, len(alerts))
	var ids []string
	for _, a := range alerts {
		if _, ok := seen[a.CoinID]; ok {
			continue
		}
		seen[a.CoinID] = struct{}{}
		ids = append(ids, a.CoinID)
	}
	return ids
}
