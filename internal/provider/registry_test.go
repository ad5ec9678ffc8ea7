package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivebackup/auth-server-go/internal/config"
	"github.com/drivebackup/auth-server-go/internal/model"
)

func testRegistry() *Registry {
	return NewRegistry(&config.Config{
		BaseURL:              "https://auth.example.com",
		GoogleClientID:       "google-id",
		GoogleClientSecret:   "google-secret",
		DropboxClientID:      "dropbox-id",
		DropboxClientSecret:  "dropbox-secret",
		OneDriveClientID:     "onedrive-id",
		OneDriveClientSecret: "onedrive-secret",
	})
}

func TestAuthorizationURL(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		provider string
		host     string
		clientID string
		params   map[string]string
	}{
		{
			provider: model.ProviderGoogleDrive,
			host:     "accounts.google.com",
			clientID: "google-id",
			params: map[string]string{
				"scope":         "https://www.googleapis.com/auth/drive.file",
				"access_type":   "offline",
				"prompt":        "consent",
				"response_type": "code",
			},
		},
		{
			provider: model.ProviderDropbox,
			host:     "www.dropbox.com",
			clientID: "dropbox-id",
			params: map[string]string{
				"token_access_type": "offline",
				"response_type":     "code",
			},
		},
		{
			provider: model.ProviderOneDrive,
			host:     "login.microsoftonline.com",
			clientID: "onedrive-id",
			params: map[string]string{
				"scope":         "files.readwrite offline_access",
				"response_type": "code",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			raw, err := r.AuthorizationURL(tc.provider, "ABC-123")
			require.NoError(t, err)

			parsed, err := url.Parse(raw)
			require.NoError(t, err)

			assert.Equal(t, tc.host, parsed.Host)
			q := parsed.Query()
			assert.Equal(t, "ABC-123", q.Get("state"))
			assert.Equal(t, "https://auth.example.com/callback", q.Get("redirect_uri"))
			assert.Equal(t, tc.clientID, q.Get("client_id"))
			for k, v := range tc.params {
				assert.Equal(t, v, q.Get(k), "param %s", k)
			}
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		_, err := r.AuthorizationURL("mega", "ABC-123")
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})
}

func TestLookup(t *testing.T) {
	r := testRegistry()

	t.Run("is case-insensitive", func(t *testing.T) {
		p, err := r.Lookup("GoogleDrive")
		require.NoError(t, err)
		assert.Equal(t, model.ProviderGoogleDrive, p.Name)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := r.Lookup("bogus")
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})
}

func TestNewTokenRequest(t *testing.T) {
	r := testRegistry()

	t.Run("google encodes as JSON", func(t *testing.T) {
		p, err := r.Lookup(model.ProviderGoogleDrive)
		require.NoError(t, err)

		req, err := p.NewTokenRequest(context.Background(), "AUTHCODE", r.RedirectURI())
		require.NoError(t, err)

		assert.Equal(t, "POST", req.Method)
		assert.Equal(t, "https://oauth2.googleapis.com/token", req.URL.String())
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(body, &fields))
		assert.Equal(t, "AUTHCODE", fields["code"])
		assert.Equal(t, "authorization_code", fields["grant_type"])
		assert.Equal(t, "google-id", fields["client_id"])
		assert.Equal(t, "google-secret", fields["client_secret"])
		assert.Equal(t, "https://auth.example.com/callback", fields["redirect_uri"])
	})

	t.Run("dropbox and onedrive encode as form", func(t *testing.T) {
		for _, name := range []string{model.ProviderDropbox, model.ProviderOneDrive} {
			p, err := r.Lookup(name)
			require.NoError(t, err)

			req, err := p.NewTokenRequest(context.Background(), "AUTHCODE", r.RedirectURI())
			require.NoError(t, err)

			assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)

			form, err := url.ParseQuery(string(body))
			require.NoError(t, err)
			assert.Equal(t, "AUTHCODE", form.Get("code"))
			assert.Equal(t, "authorization_code", form.Get("grant_type"))
			assert.Equal(t, p.ClientID, form.Get("client_id"))
		}
	})
}
