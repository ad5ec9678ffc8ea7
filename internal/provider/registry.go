package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/drivebackup/auth-server-go/internal/config"
	"github.com/drivebackup/auth-server-go/internal/model"
)

var ErrUnknownProvider = errors.New("unknown storage provider")

// BodyEncoding selects how a provider's token endpoint expects the request
// body. Google's endpoint accepts JSON; Dropbox and Microsoft take
// form-url-encoded.
type BodyEncoding int

const (
	EncodingForm BodyEncoding = iota
	EncodingJSON
)

// Provider holds the immutable OAuth endpoints and credentials for one of the
// three storage backends.
type Provider struct {
	Name         string
	AuthURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Encoding     BodyEncoding

	// Fixed authorization parameters beyond client_id/redirect_uri/state.
	AuthParams url.Values
}

// AuthorizationURL builds the URL the user must visit, carrying the pairing
// code as OAuth state.
func (p *Provider) AuthorizationURL(state, redirectURI string) string {
	params := url.Values{}
	for k, vs := range p.AuthParams {
		params[k] = vs
	}
	params.Set("client_id", p.ClientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("state", state)
	return p.AuthURL + "?" + params.Encode()
}

// NewTokenRequest builds the server-to-server request trading an
// authorization code for tokens, encoded the way this provider expects.
func (p *Provider) NewTokenRequest(ctx context.Context, authCode, redirectURI string) (*http.Request, error) {
	fields := map[string]string{
		"client_id":     p.ClientID,
		"client_secret": p.ClientSecret,
		"code":          authCode,
		"grant_type":    "authorization_code",
		"redirect_uri":  redirectURI,
	}

	var body *bytes.Reader
	var contentType string

	switch p.Encoding {
	case EncodingJSON:
		data, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	default:
		form := url.Values{}
		for k, v := range fields {
			form.Set(k, v)
		}
		body = bytes.NewReader([]byte(form.Encode()))
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

// Registry is the immutable provider set, built once at startup.
type Registry struct {
	providers   map[string]*Provider
	redirectURI string
}

func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{
		redirectURI: cfg.RedirectURI(),
		providers: map[string]*Provider{
			model.ProviderGoogleDrive: {
				Name:         model.ProviderGoogleDrive,
				AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:     "https://oauth2.googleapis.com/token",
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Encoding:     EncodingJSON,
				AuthParams: url.Values{
					"scope":         {"https://www.googleapis.com/auth/drive.file"},
					"access_type":   {"offline"},
					"prompt":        {"consent"},
					"response_type": {"code"},
				},
			},
			model.ProviderDropbox: {
				Name:         model.ProviderDropbox,
				AuthURL:      "https://www.dropbox.com/oauth2/authorize",
				TokenURL:     "https://api.dropbox.com/oauth2/token",
				ClientID:     cfg.DropboxClientID,
				ClientSecret: cfg.DropboxClientSecret,
				Encoding:     EncodingForm,
				AuthParams: url.Values{
					"token_access_type": {"offline"},
					"response_type":     {"code"},
				},
			},
			model.ProviderOneDrive: {
				Name:         model.ProviderOneDrive,
				AuthURL:      "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
				TokenURL:     "https://login.microsoftonline.com/common/oauth2/v2.0/token",
				ClientID:     cfg.OneDriveClientID,
				ClientSecret: cfg.OneDriveClientSecret,
				Encoding:     EncodingForm,
				AuthParams: url.Values{
					"scope":         {"files.readwrite offline_access"},
					"response_type": {"code"},
				},
			},
		},
	}
}

// NewRegistryWithProviders builds a registry over an explicit provider set.
// Used by tests to point token endpoints at local servers.
func NewRegistryWithProviders(redirectURI string, providers map[string]*Provider) *Registry {
	return &Registry{redirectURI: redirectURI, providers: providers}
}

func (r *Registry) RedirectURI() string {
	return r.redirectURI
}

// Lookup resolves a provider identifier, case-insensitively.
func (r *Registry) Lookup(name string) (*Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// AuthorizationURL validates the provider and builds the user-facing URL with
// the pairing code as state.
func (r *Registry) AuthorizationURL(providerName, state string) (string, error) {
	p, err := r.Lookup(providerName)
	if err != nil {
		return "", err
	}
	return p.AuthorizationURL(state, r.redirectURI), nil
}
