package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDigits    = 6      // Standard 6-digit TOTP codes
	DefaultPeriod    = 30     // 30-second step (RFC 6238)
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 (RFC 6238)
	SecretSize       = 20     // 160-bit secret (RFC 4226 recommendation)
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	codeRegex = regexp.MustCompile(`^\d{6}$`)

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// URIParams contains the parameters for otpauth URI generation
type URIParams struct {
	Secret      string // Base32-encoded secret (required)
	AccountName string // Label shown in the authenticator app (required)
	Issuer      string // Service name (required)
	Algorithm   string // defaults to SHA1
	Digits      int    // defaults to 6
	Period      int    // defaults to 30
}

// Validate ensures all required URI parameters are present and valid
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

func (p URIParams) withDefaults() URIParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// GenerateSecretKey returns a fresh random secret as unpadded Base32.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return b32.EncodeToString(secret), nil
}

// GetTOTPURI builds an otpauth:// URI following the Key Uri Format:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func GetTOTPURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	params = params.withDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm)
	query.Set("digits", strconv.Itoa(params.Digits))
	query.Set("period", strconv.Itoa(params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// IsWellFormedCode reports whether code is exactly six ASCII digits.
func IsWellFormedCode(code string) bool {
	return codeRegex.MatchString(code)
}

// Verify checks code against the current time step and window steps on either side.
func Verify(secret, code string, window int) bool {
	return VerifyAt(secret, code, window, time.Now())
}

// VerifyAt is Verify evaluated at the given instant.
// Malformed codes and undecodable secrets are rejected before any HMAC is computed.
func VerifyAt(secret, code string, window int, at time.Time) bool {
	if !IsWellFormedCode(code) {
		return false
	}
	key, err := decodeSecret(secret)
	if err != nil {
		return false
	}
	if window < 0 {
		window = 0
	}

	counter := at.Unix() / DefaultPeriod
	matched := 0
	for i := -window; i <= window; i++ {
		candidate := formatCode(GenerateHOTP(key, counter+int64(i), DefaultDigits))
		matched |= subtle.ConstantTimeCompare([]byte(candidate), []byte(code))
	}
	return matched == 1
}

// GenerateTOTP returns the code for the current time step.
func GenerateTOTP(secret string) (string, error) {
	return GenerateTOTPWithTime(secret, time.Now())
}

// GenerateTOTPWithTime returns the code for the step containing t.
func GenerateTOTPWithTime(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateTOTP, err)
	}
	return formatCode(GenerateHOTP(key, t.Unix()/DefaultPeriod, DefaultDigits)), nil
}

// GenerateHOTP implements RFC 4226 HMAC-based One-Time Password algorithm.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	hash := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects the offset.
	offset := hash[len(hash)-1] & 0x0f
	code := int(binary.BigEndian.Uint32(hash[offset:offset+4]) & 0x7fffffff)

	mod := 1
	for range digits {
		mod *= 10
	}
	return code % mod
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

func formatCode(code int) string {
	return fmt.Sprintf("%0*d", DefaultDigits, code)
}
