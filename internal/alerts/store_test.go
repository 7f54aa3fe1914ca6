package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/selivandex/market-intel/internal/storage"
	"github.com/selivandex/market-intel/pkg/models"
)

func newTestStore(t *testing.T, records storage.RecordStore) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), records)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemory())

	alert := directionAlert("a1", "s1")
	if err := store.Create(ctx, alert); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, ok := store.Get("a1")
	if !ok {
		t.Fatal("alert not found after Create")
	}
	if got.Name != "direction watch" || got.Type != models.AlertDirectionChange {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not stamped")
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("Get returned a missing alert")
	}
}

func TestStore_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemory())

	invalid := models.Alert{
		AlertID:    "bad",
		Type:       models.AlertDirectionChange,
		Conditions: models.DirectionChangeConditions{SignalID: ""},
		Enabled:    true,
	}
	if err := store.Create(ctx, invalid); err == nil {
		t.Fatal("expected validation error")
	}
	if _, ok := store.Get("bad"); ok {
		t.Error("invalid alert was stored")
	}
}

func TestStore_ListSortedByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemory())

	for _, id := range []string{"c", "a", "b"} {
		if err := store.Create(ctx, directionAlert(id, "s1")); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}

	listed := store.List()
	if len(listed) != 3 {
		t.Fatalf("List returned %d alerts, want 3", len(listed))
	}
	for i, want := range []string{"a", "b", "c"} {
		if listed[i].AlertID != want {
			t.Errorf("List[%d] = %s, want %s", i, listed[i].AlertID, want)
		}
	}
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemory())

	alert := directionAlert("a1", "s1")
	if err := store.Create(ctx, alert); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	alert.Enabled = false
	alert.Name = "renamed"
	if err := store.Update(ctx, alert); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.Get("a1")
	if got.Enabled || got.Name != "renamed" {
		t.Errorf("update not applied: %+v", got)
	}

	missing := directionAlert("nope", "s1")
	if err := store.Update(ctx, missing); err == nil {
		t.Error("expected error updating missing alert")
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemory())

	if err := store.Create(ctx, directionAlert("a1", "s1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := store.Delete(ctx, "a1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("Delete reported false for an existing alert")
	}
	if _, ok := store.Get("a1"); ok {
		t.Error("alert still present after Delete")
	}

	deleted, err = store.Delete(ctx, "a1")
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if deleted {
		t.Error("Delete reported true for a missing alert")
	}
}

func TestStore_MarkTriggered(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemory())

	if err := store.Create(ctx, directionAlert("a1", "s1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	firedAt := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	if err := store.MarkTriggered(ctx, "a1", firedAt); err != nil {
		t.Fatalf("MarkTriggered failed: %v", err)
	}

	got, _ := store.Get("a1")
	want := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if !got.LastTriggered.Equal(want) {
		t.Errorf("LastTriggered = %v, want %v", got.LastTriggered, want)
	}

	if err := store.MarkTriggered(ctx, "missing", firedAt); err == nil {
		t.Error("expected error marking missing alert")
	}
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()
	records := storage.NewMemory()

	first := newTestStore(t, records)
	if err := first.Create(ctx, directionAlert("a1", "s1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := first.Create(ctx, models.Alert{
		AlertID:    "a2",
		Name:       "stale watch",
		Type:       models.AlertStaleSignal,
		Conditions: models.StaleSignalConditions{Market: "Gold"},
		Enabled:    true,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reloaded := newTestStore(t, records)
	if len(reloaded.List()) != 2 {
		t.Fatalf("reloaded %d alerts, want 2", len(reloaded.List()))
	}
	got, ok := reloaded.Get("a2")
	if !ok {
		t.Fatal("a2 missing after reload")
	}
	conditions, ok := got.Conditions.(models.StaleSignalConditions)
	if !ok {
		t.Fatalf("conditions decoded as %T", got.Conditions)
	}
	if conditions.Market != "Gold" {
		t.Errorf("market = %q, want Gold", conditions.Market)
	}
}
