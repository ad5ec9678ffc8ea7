package model

import "time"

// Pairing is one device-authorization attempt, keyed by UserCode.
type Pairing struct {
	UserCode   string    `db:"user_code" json:"userCode"`
	DeviceCode string    `db:"device_code" json:"-"`
	Provider   string    `db:"provider" json:"provider"`
	VerifyURL  string    `db:"verify_url" json:"verifyUrl"`
	AuthCode   *string   `db:"auth_code" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Authorized reports whether the provider callback has landed.
func (p *Pairing) Authorized() bool {
	return p.AuthCode != nil && *p.AuthCode != ""
}

type CreatePairingParams struct {
	UserCode   string
	DeviceCode string
	Provider   string
	VerifyURL  string
}

const (
	ProviderGoogleDrive = "googledrive"
	ProviderDropbox     = "dropbox"
	ProviderOneDrive    = "onedrive"
)
