package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/ports"
)

const completedKeyPrefix = "completed_destinations:"

var errCorruptCompleted = errors.New("completed destinations must be strictly increasing non-negative indices")

// CompletedStore persists the completed-stop indices of a trip as a JSON array
// in a single key-value slot.
type CompletedStore struct {
	kv     ports.KeyValueStore
	logger *logger.Logger
}

func NewCompletedStore(kv ports.KeyValueStore, log *logger.Logger) *CompletedStore {
	return &CompletedStore{kv: kv, logger: log}
}

// CompletedKey is the slot name of a trip's completed stops.
func CompletedKey(tripID string) string {
	return completedKeyPrefix + tripID
}

// Load returns the persisted indices. Missing, unreadable or corrupt data
// degrades to an empty slice; the cause is logged, never returned.
func (store *CompletedStore) Load(ctx context.Context, tripID string) []int {
	raw, found, err := store.kv.Get(ctx, CompletedKey(tripID))
	if err != nil {
		store.logger.Error(ctx, "completed_load_failed", "Failed to read completed destinations, starting empty",
			&trip.PersistenceError{Op: "load", Err: err}, map[string]any{"trip_id": tripID})
		return []int{}
	}
	if !found || len(raw) == 0 {
		return []int{}
	}

	indices, err := decodeCompleted(raw)
	if err != nil {
		store.logger.Error(ctx, "completed_corrupt", "Persisted completed destinations are corrupt, starting empty",
			&trip.PersistenceError{Op: "decode", Err: err}, map[string]any{"trip_id": tripID, "size": len(raw)})
		return []int{}
	}
	return indices
}

// Save overwrites the persisted indices and reports whether the write completed.
func (store *CompletedStore) Save(ctx context.Context, tripID string, indices []int) error {
	if indices == nil {
		indices = []int{}
	}
	raw, err := json.Marshal(indices)
	if err != nil {
		return &trip.PersistenceError{Op: "encode", Err: err}
	}
	if err := store.kv.Put(ctx, CompletedKey(tripID), raw); err != nil {
		return &trip.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func decodeCompleted(raw []byte) ([]int, error) {
	var indices []int
	if err := json.Unmarshal(raw, &indices); err != nil {
		return nil, err
	}
	for i, v := range indices {
		if v < 0 || (i > 0 && v <= indices[i-1]) {
			return nil, fmt.Errorf("%w: %v", errCorruptCompleted, indices)
		}
	}
	if indices == nil {
		indices = []int{}
	}
	return indices, nil
}
