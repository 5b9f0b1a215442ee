package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/config"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/models"
	"github.com/ukydev/maintenance-tracker/internal/recurrence"
)

func TestSeedData_IsConsistent(t *testing.T) {
	codes := map[string]bool{}
	for _, a := range assets {
		assert.False(t, codes[a.AssetCode], "duplicate asset %s", a.AssetCode)
		codes[a.AssetCode] = true
		assert.True(t, models.IsValidAssetCategory(a.Category), a.AssetCode)
	}

	usernames := map[string]models.Role{}
	for _, u := range users {
		_, dup := usernames[u.Username]
		assert.False(t, dup, "duplicate user %s", u.Username)
		usernames[u.Username] = u.Role
	}
	roles := map[models.Role]bool{}
	for _, role := range usernames {
		roles[role] = true
	}
	assert.True(t, roles[models.RoleManager])
	assert.True(t, roles[models.RoleTechnician])
	assert.True(t, roles[models.RoleEmployee])

	for _, s := range schedules {
		assert.True(t, codes[s.AssetCode], s.AssetCode)
		assert.True(t, recurrence.IsValidFrequency(s.Frequency), string(s.Frequency))
	}
	for _, r := range requests {
		assert.True(t, codes[r.AssetCode], r.AssetCode)
		assert.Contains(t, usernames, r.Submitter)
	}
}

func TestSeed_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set; skipping integration test")
	}
	client, err := db.ConnectMongo(uri)
	if err != nil {
		t.Skipf("MongoDB not reachable: %v", err)
	}
	store := db.NewStore(client, "test_maintenance_seed")
	ctx := context.Background()
	defer func() {
		_ = store.Database.Drop(ctx)
		_ = store.Disconnect(ctx)
	}()

	authService := auth.NewService(config.AuthConfig{JWTSecret: "test"})
	require.NoError(t, seed(ctx, store, authService, time.Now().UTC()))
	// A second run starts from scratch.
	require.NoError(t, seed(ctx, store, authService, time.Now().UTC()))

	found, err := store.Assets.FindAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, found, len(assets))

	req, err := store.Requests.FindRequestByID(ctx, "REQ-1001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)
}
