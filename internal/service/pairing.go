package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drivebackup/auth-server-go/internal/config"
	apperrors "github.com/drivebackup/auth-server-go/internal/errors"
	"github.com/drivebackup/auth-server-go/internal/model"
	"github.com/drivebackup/auth-server-go/internal/provider"
	"github.com/drivebackup/auth-server-go/internal/repository"
	"github.com/drivebackup/auth-server-go/internal/util"
)

// Pairing codes draw from digits plus uppercase letters so they survive being
// read aloud and retyped.
const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	userCodeGroupLen = 3
	deviceCodeLen    = 32
)

// VerifyURLCache caches the immutable authorization URL of a pairing.
type VerifyURLCache interface {
	GetVerifyURL(ctx context.Context, userCode string) (string, error)
	SetVerifyURL(ctx context.Context, userCode, url string, ttl time.Duration) error
}

type IssueResult struct {
	UserCode        string
	DeviceCode      string
	VerificationURI string
	Interval        int
}

type ExchangeResult struct {
	RefreshToken string
}

type PairingService struct {
	repo            repository.PairingRepository
	registry        *provider.Registry
	cache           VerifyURLCache
	client          *http.Client
	ttl             time.Duration
	pollInterval    int
	verificationURI string
}

func NewPairingService(
	repo repository.PairingRepository,
	registry *provider.Registry,
	cache VerifyURLCache,
	cfg *config.Config,
) *PairingService {
	return &PairingService{
		repo:            repo,
		registry:        registry,
		cache:           cache,
		client:          &http.Client{Timeout: config.ExchangeTimeout},
		ttl:             cfg.PairingTTL(),
		pollInterval:    cfg.PollIntervalSeconds,
		verificationURI: cfg.VerificationURI(),
	}
}

// Issue validates the provider, mints codes and responds before the record is
// persisted. The write completes on a background goroutine; a client polling
// in that gap sees an ordinary "not authenticated" result, never an error.
func (s *PairingService) Issue(ctx context.Context, providerName string) (*IssueResult, error) {
	p, err := s.registry.Lookup(providerName)
	if err != nil {
		return nil, apperrors.InvalidProvider(providerName).WithCause(err)
	}

	userCode, deviceCode := newPairingCode()
	verifyURL := p.AuthorizationURL(userCode, s.registry.RedirectURI())

	go s.persist(model.CreatePairingParams{
		UserCode:   userCode,
		DeviceCode: deviceCode,
		Provider:   p.Name,
		VerifyURL:  verifyURL,
	})

	return &IssueResult{
		UserCode:        userCode,
		DeviceCode:      deviceCode,
		VerificationURI: s.verificationURI,
		Interval:        s.pollInterval,
	}, nil
}

func (s *PairingService) persist(params model.CreatePairingParams) {
	ctx, cancel := context.WithTimeout(context.Background(), config.IssueWriteTimeout)
	defer cancel()

	if _, err := s.repo.Create(ctx, params); err != nil {
		log.Error().Err(err).
			Str("userCode", util.MaskCode(params.UserCode)).
			Str("provider", params.Provider).
			Msg("failed to persist pairing")
		return
	}

	if s.cache != nil {
		if err := s.cache.SetVerifyURL(ctx, params.UserCode, params.VerifyURL, s.ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache verify url")
		}
	}

	log.Info().
		Str("userCode", util.MaskCode(params.UserCode)).
		Str("provider", params.Provider).
		Msg("pairing created")
}

// ResolveForRedirect returns the stored authorization URL for a pairing code.
func (s *PairingService) ResolveForRedirect(ctx context.Context, userCode string) (string, error) {
	userCode = normalizeCode(userCode)

	if s.cache != nil {
		cached, err := s.cache.GetVerifyURL(ctx, userCode)
		if err != nil {
			log.Warn().Err(err).Msg("verify url cache read failed")
		} else if cached != "" {
			return cached, nil
		}
	}

	pairing, err := s.repo.FindByCode(ctx, userCode)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if pairing == nil {
		return "", apperrors.NotValid()
	}

	if s.cache != nil {
		if remaining := s.ttl - time.Since(pairing.CreatedAt); remaining > 0 {
			if err := s.cache.SetVerifyURL(ctx, userCode, pairing.VerifyURL, remaining); err != nil {
				log.Warn().Err(err).Msg("verify url cache write failed")
			}
		}
	}

	return pairing.VerifyURL, nil
}

// RecordCallback stores the authorization code delivered by a provider
// redirect. The code is write-once; replays leave the record untouched.
func (s *PairingService) RecordCallback(ctx context.Context, state, authCode, providerErr string) error {
	if providerErr != "" {
		log.Warn().Str("error", providerErr).Msg("provider returned an error on callback")
		return apperrors.MalformedCallback(fmt.Sprintf("provider error: %s", providerErr))
	}
	if state == "" || authCode == "" {
		return apperrors.MalformedCallback("missing state or code")
	}

	userCode := normalizeCode(state)

	err := s.repo.SetAuthCode(ctx, userCode, authCode)
	if errors.Is(err, repository.ErrNotFound) {
		// The user already completed consent at the provider; the pairing
		// expired or never existed on our side.
		log.Warn().Str("userCode", util.MaskCode(userCode)).Msg("callback for unknown or expired pairing")
		return apperrors.NotValid().WithCause(err)
	}
	if err != nil {
		return apperrors.Database(err)
	}

	log.Info().Str("userCode", util.MaskCode(userCode)).Msg("pairing authorized")
	return nil
}

// Exchange trades a completed pairing for the provider's refresh token. The
// store is not mutated on success; the reaper reclaims the record later.
func (s *PairingService) Exchange(ctx context.Context, userCode, deviceCode string) (*ExchangeResult, error) {
	userCode = normalizeCode(userCode)

	pairing, err := s.repo.FindByCode(ctx, userCode)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if pairing == nil || !pairing.Authorized() {
		return nil, apperrors.NotAuthenticated()
	}

	if !util.ConstantTimeEqual(pairing.DeviceCode, deviceCode) {
		log.Warn().Str("userCode", util.MaskCode(userCode)).Msg("exchange rejected: device code mismatch")
		return nil, apperrors.InvalidDeviceCode()
	}

	p, err := s.registry.Lookup(pairing.Provider)
	if err != nil {
		return nil, apperrors.Internal(fmt.Sprintf("pairing references provider %q", pairing.Provider)).WithCause(err)
	}

	req, err := p.NewTokenRequest(ctx, *pairing.AuthCode, s.registry.RedirectURI())
	if err != nil {
		return nil, apperrors.Internal("failed to build token request").WithCause(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperrors.ExchangeFailed("token endpoint unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ExchangeFailed("failed to read token response").WithCause(err)
	}

	var tokenResp struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil || tokenResp.RefreshToken == "" {
		// The upstream payload carries the diagnosis (expired code, bad
		// client, already redeemed); surface it verbatim.
		log.Warn().
			Int("status", resp.StatusCode).
			Str("provider", p.Name).
			Str("userCode", util.MaskCode(userCode)).
			Msg("token exchange returned no refresh token")
		return nil, apperrors.ExchangeFailed(string(body))
	}

	log.Info().
		Str("provider", p.Name).
		Str("userCode", util.MaskCode(userCode)).
		Msg("token exchange successful")

	return &ExchangeResult{RefreshToken: tokenResp.RefreshToken}, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func newPairingCode() (userCode, deviceCode string) {
	userCode = randomCode(userCodeGroupLen) + "-" + randomCode(userCodeGroupLen)
	deviceCode = randomCode(deviceCodeLen)
	return userCode, deviceCode
}

func randomCode(length int) string {
	chars := []byte(codeAlphabet)
	out := make([]byte, length)
	for i := range out {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		out[i] = chars[n.Int64()]
	}
	return string(out)
}
