package totp

// Config holds TOTP settings loaded from the environment.
type Config struct {
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY,required"` // base64, 32 bytes
	Issuer        string `env:"TOTP_ISSUER" envDefault:"VenueHub"`
	EnableWindow  int    `env:"TOTP_ENABLE_WINDOW" envDefault:"1"`
	DisableWindow int    `env:"TOTP_DISABLE_WINDOW" envDefault:"2"`
}
