package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"trip-tracker/internal/domain/geo"
)

// testPool connects to TRIP_TRACKER_TEST_DATABASE_URL or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TRIP_TRACKER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TRIP_TRACKER_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func TestKVStore(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	store := NewKVStore(pool)
	key := "completed_destinations:test-" + time.Now().Format("150405.000000")

	if _, found, err := store.Get(ctx, key); err != nil || found {
		t.Fatalf("Get missing = found %v, err %v", found, err)
	}
	for _, v := range []string{`[0]`, `[0,1]`} {
		if err := store.Put(ctx, key, []byte(v)); err != nil {
			t.Fatalf("Put(%s): %v", v, err)
		}
	}
	got, found, err := store.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("Get = found %v, err %v", found, err)
	}
	if string(got) != `[0, 1]` && string(got) != `[0,1]` {
		t.Errorf("value = %s", got)
	}

	if err := store.Put(ctx, key, []byte(`{`)); err == nil {
		t.Error("invalid JSON must be rejected")
	}
}

func TestLocationHistoryRepo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewLocationHistoryRepo(pool)
	tripID := "trip-" + time.Now().Format("150405.000000")

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		fix := geo.Fix{
			Coordinate: geo.Coordinate{Latitude: 10 + float64(i)/100, Longitude: 106},
			RecordedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Archive(ctx, tripID, fix); err != nil {
			t.Fatalf("Archive: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, tripID, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Latitude != 10.02 {
		t.Errorf("recent = %+v", recent)
	}

	bad := geo.Fix{Coordinate: geo.Coordinate{Latitude: 91}, RecordedAt: base}
	if err := repo.Archive(ctx, tripID, bad); err == nil {
		t.Error("invalid fix must not be archived")
	}
}

func TestMustTxFromContext(t *testing.T) {
	if _, ok := TxFromContext(context.Background()); ok {
		t.Error("no transaction expected in a bare context")
	}
	if _, err := MustTxFromContext(context.Background()); err == nil {
		t.Error("expected an error outside a transaction")
	}
}
