package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivebackup/auth-server-go/internal/database"
	"github.com/drivebackup/auth-server-go/internal/model"
)

// These tests run against a real Postgres with the pairings schema applied
// (migrations/0001_pairings.sql). Set TEST_DATABASE_URL to enable them.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.Connect(url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestPairing(t *testing.T, repo PairingRepository, userCode string) *model.Pairing {
	t.Helper()
	p, err := repo.Create(context.Background(), model.CreatePairingParams{
		UserCode:   userCode,
		DeviceCode: "D3V1C3C0D3D3V1C3C0D3D3V1C3C0D312",
		Provider:   model.ProviderDropbox,
		VerifyURL:  fmt.Sprintf("https://www.dropbox.com/oauth2/authorize?state=%s", userCode),
	})
	require.NoError(t, err)
	return p
}

func TestPairingRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPairingRepository(db.DB)
	ctx := context.Background()

	created := createTestPairing(t, repo, "AAA-111")
	defer repo.Delete(ctx, "AAA-111")

	assert.Equal(t, "AAA-111", created.UserCode)
	assert.Nil(t, created.AuthCode)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, 5*time.Second)

	t.Run("finds an existing pairing", func(t *testing.T) {
		p, err := repo.FindByCode(ctx, "AAA-111")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, created.VerifyURL, p.VerifyURL)
	})

	t.Run("missing pairing is nil without error", func(t *testing.T) {
		p, err := repo.FindByCode(ctx, "ZZZ-999")
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestPairingRepository_SetAuthCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPairingRepository(db.DB)
	ctx := context.Background()

	createTestPairing(t, repo, "BBB-222")
	defer repo.Delete(ctx, "BBB-222")

	t.Run("sets the code once", func(t *testing.T) {
		require.NoError(t, repo.SetAuthCode(ctx, "BBB-222", "FIRST"))

		p, err := repo.FindByCode(ctx, "BBB-222")
		require.NoError(t, err)
		require.NotNil(t, p.AuthCode)
		assert.Equal(t, "FIRST", *p.AuthCode)
	})

	t.Run("never overwrites an existing code", func(t *testing.T) {
		require.NoError(t, repo.SetAuthCode(ctx, "BBB-222", "SECOND"))

		p, err := repo.FindByCode(ctx, "BBB-222")
		require.NoError(t, err)
		assert.Equal(t, "FIRST", *p.AuthCode)
	})

	t.Run("missing pairing is ErrNotFound", func(t *testing.T) {
		err := repo.SetAuthCode(ctx, "ZZZ-999", "CODE")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPairingRepository_ListExpiredAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPairingRepository(db.DB)
	ctx := context.Background()

	createTestPairing(t, repo, "CCC-333")
	defer repo.Delete(ctx, "CCC-333")

	t.Run("a fresh pairing is not expired", func(t *testing.T) {
		expired, err := repo.ListExpired(ctx, time.Now().Add(-5*time.Minute))
		require.NoError(t, err)
		for _, p := range expired {
			assert.NotEqual(t, "CCC-333", p.UserCode)
		}
	})

	t.Run("a future cutoff catches it", func(t *testing.T) {
		expired, err := repo.ListExpired(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)

		found := false
		for _, p := range expired {
			if p.UserCode == "CCC-333" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("delete is a no-op on a missing key", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "CCC-333"))
		assert.NoError(t, repo.Delete(ctx, "CCC-333"))

		p, err := repo.FindByCode(ctx, "CCC-333")
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}
