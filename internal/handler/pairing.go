package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/drivebackup/auth-server-go/internal/errors"
	"github.com/drivebackup/auth-server-go/internal/service"
)

type PairingHandler struct {
	pairingService *service.PairingService
	pages          *Pages
}

func NewPairingHandler(pairingService *service.PairingService, pages *Pages) *PairingHandler {
	return &PairingHandler{
		pairingService: pairingService,
		pages:          pages,
	}
}

type pinRequest struct {
	Type string `json:"type"`
}

type pinResponse struct {
	Success         bool   `json:"success"`
	UserCode        string `json:"user_code"`
	DeviceCode      string `json:"device_code"`
	VerificationURI string `json:"verification_uri"`
	Interval        int    `json:"interval"`
}

// Pin issues a new pairing: POST /pin with {type: provider}.
func (h *PairingHandler) Pin(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.MissingParams().WithCause(err))
		return
	}

	result, err := h.pairingService.Issue(r.Context(), req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pinResponse{
		Success:         true,
		UserCode:        result.UserCode,
		DeviceCode:      result.DeviceCode,
		VerificationURI: result.VerificationURI,
		Interval:        result.Interval,
	})
}

type providerResponse struct {
	Success   bool   `json:"success"`
	VerifyURL string `json:"verifyURL"`
}

// Provider returns the authorization URL for a pairing code without
// redirecting: GET /provider/{user_code}.
func (h *PairingHandler) Provider(w http.ResponseWriter, r *http.Request) {
	verifyURL, err := h.pairingService.ResolveForRedirect(r.Context(), chi.URLParam(r, "userCode"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, providerResponse{
		Success:   true,
		VerifyURL: verifyURL,
	})
}

// Redirect sends the user's browser to the provider's consent page:
// GET /{user_code}.
func (h *PairingHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	verifyURL, err := h.pairingService.ResolveForRedirect(r.Context(), chi.URLParam(r, "userCode"))
	if err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, verifyURL, http.StatusFound)
}

// Callback is the provider's redirect target: GET /callback?state&code[&error].
// The user lands here after consent, so the response is always a terminal
// HTML page.
func (h *PairingHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	err := h.pairingService.RecordCallback(r.Context(), q.Get("state"), q.Get("code"), q.Get("error"))
	if err != nil {
		log.Warn().Err(err).Msg("callback rejected")
		h.pages.Fail(w, r)
		return
	}

	h.pages.Success(w, r)
}

type tokenRequest struct {
	UserCode   string `json:"user_code"`
	DeviceCode string `json:"device_code"`
}

type tokenResponse struct {
	Success      bool   `json:"success"`
	RefreshToken string `json:"refresh_token"`
}

// Token exchanges a completed pairing for a refresh token: POST /token with
// {user_code, device_code}.
func (h *PairingHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.MissingParams().WithCause(err))
		return
	}
	if req.UserCode == "" || req.DeviceCode == "" {
		writeError(w, apperrors.MissingParams())
		return
	}

	result, err := h.pairingService.Exchange(r.Context(), req.UserCode, req.DeviceCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Success:      true,
		RefreshToken: result.RefreshToken,
	})
}
