package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/drivebackup/auth-server-go/internal/errors"
	"github.com/drivebackup/auth-server-go/internal/httputil"
	"github.com/drivebackup/auth-server-go/internal/util"
)

// SharedSecretMiddleware gates the client-facing endpoints behind the
// pre-shared broker secret carried in the request body. The gate runs before
// any pairing operation; a mismatch short-circuits with
// request_unauthenticated.
type SharedSecretMiddleware struct {
	secret string
}

func NewSharedSecretMiddleware(secret string) *SharedSecretMiddleware {
	return &SharedSecretMiddleware{secret: secret}
}

func (m *SharedSecretMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			log.Warn().Msg("shared secret gate bypassed: AUTHENTICATOR_CLIENT_SECRET is not configured")
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("secret middleware: failed to read body")
			httputil.WriteError(w, apperrors.Internal("failed to read request body"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var payload struct {
			ClientSecret string `json:"client_secret"`
		}
		if err := json.Unmarshal(body, &payload); err != nil || !util.ConstantTimeEqual(payload.ClientSecret, m.secret) {
			log.Warn().Str("path", r.URL.Path).Msg("secret middleware: unauthenticated request")
			httputil.WriteError(w, apperrors.Unauthenticated())
			return
		}

		next.ServeHTTP(w, r)
	})
}
