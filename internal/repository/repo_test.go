package repository_test

import (
	"context"
	"testing"

	"cryptoalert/internal/models"
	"cryptoalert/internal/repository"
	"cryptoalert/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
)

func resetTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), `TRUNCATE alerts, price_history`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// ---------- AlertRepo ----------

func TestAlertRepo_CreateAndGetActive(t *testing.T) {
	pool := testutil.SetupPool(t)
	resetTables(t, pool)
	repo := repository.NewAlertRepo(pool)
	ctx := context.Background()

	first, err := repo.Create(ctx, "bitcoin", "Bitcoin", 50000, models.ConditionAbove, "a@example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if !first.IsActive || first.TriggeredAt != nil {
		t.Fatalf("new alert should be active and untriggered: %+v", first)
	}

	second, err := repo.Create(ctx, "ethereum", "Ethereum", 2000, models.ConditionBelow, "b@example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	active, err := repo.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active alerts, got %d", len(active))
	}
	// Newest first.
	if active[0].ID != second.ID || active[1].ID != first.ID {
		t.Fatalf("expected newest-first order, got ids %d, %d", active[0].ID, active[1].ID)
	}
	if active[1].Condition != models.ConditionAbove || active[1].TargetPrice != 50000 {
		t.Fatalf("fields did not round-trip: %+v", active[1])
	}
}

func TestAlertRepo_CreateRejectsBadCondition(t *testing.T) {
	pool := testutil.SetupPool(t)
	resetTables(t, pool)
	repo := repository.NewAlertRepo(pool)

	// The CHECK constraint is defense in depth behind the HTTP validation.
	_, err := repo.Create(context.Background(), "bitcoin", "Bitcoin", 50000, "sideways", "a@example.com")
	if err == nil {
		t.Fatal("expected constraint violation for bad condition")
	}
}

func TestAlertRepo_Deactivate(t *testing.T) {
	pool := testutil.SetupPool(t)
	resetTables(t, pool)
	repo := repository.NewAlertRepo(pool)
	ctx := context.Background()

	a, err := repo.Create(ctx, "bitcoin", "Bitcoin", 50000, models.ConditionAbove, "a@example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.Deactivate(ctx, a.ID)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row affected, got %d", n)
	}

	active, err := repo.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("deactivated alert still listed: %+v", active)
	}

	// Deactivating again reports zero rows, same as a missing id.
	n, err = repo.Deactivate(ctx, a.ID)
	if err != nil {
		t.Fatalf("Deactivate again: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows for already-inactive alert, got %d", n)
	}

	n, err = repo.Deactivate(ctx, 999999)
	if err != nil {
		t.Fatalf("Deactivate missing: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows for missing alert, got %d", n)
	}
}

func TestAlertRepo_MarkTriggered(t *testing.T) {
	pool := testutil.SetupPool(t)
	resetTables(t, pool)
	repo := repository.NewAlertRepo(pool)
	ctx := context.Background()

	a, err := repo.Create(ctx, "bitcoin", "Bitcoin", 50000, models.ConditionAbove, "a@example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.MarkTriggered(ctx, a.ID)
	if err != nil {
		t.Fatalf("MarkTriggered: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row affected, got %d", n)
	}

	// Triggered alerts never reappear in the eligible set.
	active, err := repo.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("triggered alert still listed: %+v", active)
	}

	// Triggering is one-shot.
	n, err = repo.MarkTriggered(ctx, a.ID)
	if err != nil {
		t.Fatalf("MarkTriggered again: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows for already-triggered alert, got %d", n)
	}
}

func TestAlertRepo_GetActiveByCoin(t *testing.T) {
	pool := testutil.SetupPool(t)
	resetTables(t, pool)
	repo := repository.NewAlertRepo(pool)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "bitcoin", "Bitcoin", 1, models.ConditionAbove, "a@example.com"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, "ethereum", "Ethereum", 2, models.ConditionBelow, "b@example.com"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	btc, err := repo.GetActiveByCoin(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("GetActiveByCoin: %v", err)
	}
	if len(btc) != 1 || btc[0].CoinID != "bitcoin" {
		t.Fatalf("expected one bitcoin alert, got %+v", btc)
	}

	none, err := repo.GetActiveByCoin(ctx, "dogecoin")
	if err != nil {
		t.Fatalf("GetActiveByCoin: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no dogecoin alerts, got %+v", none)
	}
}

// ---------- PriceRepo ----------

func TestPriceRepo_RecordAndHistory(t *testing.T) {
	pool := testutil.SetupPool(t)
	resetTables(t, pool)
	repo := repository.NewPriceRepo(pool)
	ctx := context.Background()

	for _, price := range []float64{100.10, 100.20, 100.30} {
		p, err := repo.Record(ctx, "bitcoin", price)
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if p.ID == 0 {
			t.Fatal("expected non-zero ID")
		}
	}

	// limit=2 returns exactly the two most recent, newest first.
	history, err := repo.GetHistory(ctx, "bitcoin", 2)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(history))
	}
	if history[0].Price != 100.30 || history[1].Price != 100.20 {
		t.Fatalf("expected newest-first [100.30 100.20], got [%.2f %.2f]",
			history[0].Price, history[1].Price)
	}

	// Default limit kicks in for non-positive values.
	all, err := repo.GetHistory(ctx, "bitcoin", 0)
	if err != nil {
		t.Fatalf("GetHistory default: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 samples with default limit, got %d", len(all))
	}
}

func TestPriceRepo_GetLatest(t *testing.T) {
	pool := testutil.SetupPool(t)
	resetTables(t, pool)
	repo := repository.NewPriceRepo(pool)
	ctx := context.Background()

	latest, err := repo.GetLatest(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("GetLatest empty: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil for no samples, got %+v", latest)
	}

	if _, err := repo.Record(ctx, "bitcoin", 100); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := repo.Record(ctx, "bitcoin", 200); err != nil {
		t.Fatalf("Record: %v", err)
	}

	latest, err = repo.GetLatest(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest == nil || latest.Price != 200 {
		t.Fatalf("expected latest price 200, got %+v", latest)
	}
}
