package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/drivebackup/auth-server-go/internal/model"
)

// ErrNotFound is returned by mutations targeting a pairing that was deleted
// or never persisted.
var ErrNotFound = errors.New("pairing not found")

type PairingRepository interface {
	Create(ctx context.Context, params model.CreatePairingParams) (*model.Pairing, error)
	FindByCode(ctx context.Context, userCode string) (*model.Pairing, error)
	SetAuthCode(ctx context.Context, userCode, authCode string) error
	ListExpired(ctx context.Context, cutoff time.Time) ([]model.Pairing, error)
	Delete(ctx context.Context, userCode string) error
}

type pairingRepo struct {
	db *sqlx.DB
}

func NewPairingRepository(db *sqlx.DB) PairingRepository {
	return &pairingRepo{db: db}
}

func (r *pairingRepo) Create(ctx context.Context, params model.CreatePairingParams) (*model.Pairing, error) {
	var p model.Pairing
	err := r.db.GetContext(ctx, &p, `
		INSERT INTO pairings (user_code, device_code, provider, verify_url)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.UserCode, params.DeviceCode, params.Provider, params.VerifyURL)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pairingRepo) FindByCode(ctx context.Context, userCode string) (*model.Pairing, error) {
	var p model.Pairing
	err := r.db.GetContext(ctx, &p, `
		SELECT * FROM pairings WHERE user_code = $1
	`, userCode)
	return HandleNotFound(&p, err)
}

// SetAuthCode records the provider's authorization code. The code is
// write-once: a second call leaves the stored value untouched.
func (r *pairingRepo) SetAuthCode(ctx context.Context, userCode, authCode string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pairings SET auth_code = COALESCE(auth_code, $2)
		WHERE user_code = $1
	`, userCode, authCode)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pairingRepo) ListExpired(ctx context.Context, cutoff time.Time) ([]model.Pairing, error) {
	var pairings []model.Pairing
	err := r.db.SelectContext(ctx, &pairings, `
		SELECT * FROM pairings WHERE created_at < $1
	`, cutoff)
	return pairings, err
}

// Delete removes a pairing. Deleting an already-gone code is a no-op.
func (r *pairingRepo) Delete(ctx context.Context, userCode string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM pairings WHERE user_code = $1
	`, userCode)
	return err
}
