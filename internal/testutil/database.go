// Package testutil provides shared test helpers for the finchat packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/storage"
)

// SetupTestStore creates a migrated in-memory session store that is closed
// when the test ends.
func SetupTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SetupAuthenticatedStore is SetupTestStore with a credential and user
// already persisted.
func SetupAuthenticatedStore(t *testing.T, token string) *storage.SQLiteStorage {
	t.Helper()

	store := SetupTestStore(t)
	ctx := context.Background()

	if err := store.SaveCredential(ctx, model.Credential{Token: token, Kind: model.DefaultTokenKind}); err != nil {
		t.Fatalf("failed to seed credential: %v", err)
	}
	if err := store.SaveUser(ctx, model.User{DisplayName: "Ana", Email: "ana@x.com"}); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return store
}
