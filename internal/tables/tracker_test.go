package tables

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/enum"
)

type mockTableStore struct {
	countFunc func(ctx context.Context, tableID uuid.UUID) (int64, error)
	setFunc   func(ctx context.Context, arg database.SetDerivedTableStatusParams) error
}

func (m *mockTableStore) CountActiveTableRefs(ctx context.Context, tableID uuid.UUID) (int64, error) {
	return m.countFunc(ctx, tableID)
}

func (m *mockTableStore) SetDerivedTableStatus(ctx context.Context, arg database.SetDerivedTableStatusParams) error {
	return m.setFunc(ctx, arg)
}

func TestRecomputeOccupiedWhenReferenced(t *testing.T) {
	tableID := uuid.New()

	var got database.SetDerivedTableStatusParams
	store := &mockTableStore{
		countFunc: func(_ context.Context, _ uuid.UUID) (int64, error) { return 2, nil },
		setFunc: func(_ context.Context, arg database.SetDerivedTableStatusParams) error {
			got = arg
			return nil
		},
	}

	if err := New(store).Recompute(context.Background(), tableID); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if got.ID != tableID || got.Status != enum.TableStatusOccupied {
		t.Errorf("set status = %+v, want OCCUPIED for %s", got, tableID)
	}
}

func TestRecomputeAvailableWhenUnreferenced(t *testing.T) {
	var got database.SetDerivedTableStatusParams
	store := &mockTableStore{
		countFunc: func(_ context.Context, _ uuid.UUID) (int64, error) { return 0, nil },
		setFunc: func(_ context.Context, arg database.SetDerivedTableStatusParams) error {
			got = arg
			return nil
		},
	}

	if err := New(store).Recompute(context.Background(), uuid.New()); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if got.Status != enum.TableStatusAvailable {
		t.Errorf("set status = %q, want AVAILABLE", got.Status)
	}
}

func TestRecomputePropagatesCountError(t *testing.T) {
	wantErr := errors.New("connection refused")
	store := &mockTableStore{
		countFunc: func(_ context.Context, _ uuid.UUID) (int64, error) { return 0, wantErr },
		setFunc: func(_ context.Context, _ database.SetDerivedTableStatusParams) error {
			t.Fatal("unexpected status write")
			return nil
		},
	}

	if err := New(store).Recompute(context.Background(), uuid.New()); !errors.Is(err, wantErr) {
		t.Errorf("Recompute() error = %v, want wrapped %v", err, wantErr)
	}
}
