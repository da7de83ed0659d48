package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/venuehub/pkg/qrcode"
	"github.com/dmitrymomot/venuehub/pkg/totp"
)

// verifyPassword never fails on mismatch; bcrypt compares in constant time.
func (s *Service) verifyPassword(acc *Account, candidate string) bool {
	return bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(candidate)) == nil
}

func (s *Service) hashPassword(plain string) ([]byte, error) {
	if plain == "" {
		return nil, ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return hash, nil
}

// SetPassword replaces the account's password hash.
func (s *Service) SetPassword(ctx context.Context, acc *Account, plain string) error {
	hash, err := s.hashPassword(plain)
	if err != nil {
		return err
	}
	if err := s.storage.UpdatePasswordHash(ctx, acc.ID, hash); err != nil {
		return storageErr(err)
	}
	acc.PasswordHash = hash
	return nil
}

// beginTwoFactorSetup provisions a fresh secret, overwriting any unconfirmed
// one. Admins also get a single new emergency code replacing the old list.
func (s *Service) beginTwoFactorSetup(ctx context.Context, acc *Account) (SetupResult, error) {
	if acc.TwoFactorEnabled {
		return SetupResult{}, ErrTwoFactorAlreadyEnabled
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return SetupResult{}, errors.Join(ErrStorage, err)
	}
	sealed, err := s.sealer.Encrypt(secret)
	if err != nil {
		return SetupResult{}, errors.Join(ErrStorage, err)
	}

	var (
		emergencyCode string
		codeHashes    []string
	)
	if acc.IsAdmin() {
		emergencyCode, err = totp.GenerateEmergencyCode()
		if err != nil {
			return SetupResult{}, errors.Join(ErrStorage, err)
		}
		codeHashes = []string{totp.HashEmergencyCode(emergencyCode)}
	}

	uri, err := totp.GetTOTPURI(totp.URIParams{
		Secret:      secret,
		AccountName: acc.Username,
		Issuer:      s.issuer,
	})
	if err != nil {
		return SetupResult{}, errors.Join(ErrStorage, err)
	}
	qr, err := qrcode.DataURL(uri, qrcode.WithSize(s.qrSize))
	if err != nil {
		return SetupResult{}, errors.Join(ErrStorage, err)
	}

	if err := s.storage.BeginTwoFactor(ctx, acc.ID, sealed, codeHashes); err != nil {
		if errors.Is(err, ErrStateChanged) {
			return SetupResult{}, ErrTwoFactorAlreadyEnabled
		}
		return SetupResult{}, storageErr(err)
	}

	return SetupResult{
		Secret:        secret,
		OTPAuthURL:    uri,
		QRCode:        qr,
		EmergencyCode: emergencyCode,
	}, nil
}

// verifyTOTP checks code against the account's sealed secret.
func (s *Service) verifyTOTP(acc *Account, code string, window int) (bool, error) {
	if acc.TwoFactorSecret == "" {
		return false, ErrTwoFactorNotSetUp
	}
	if !totp.IsWellFormedCode(code) {
		return false, nil
	}
	secret, err := s.sealer.Decrypt(acc.TwoFactorSecret)
	if err != nil {
		return false, errors.Join(ErrStorage, err)
	}
	return totp.VerifyAt(secret, code, window, s.now()), nil
}

// confirmTwoFactorEnable proves possession of the provisioned secret and enables 2FA.
// A repeated confirmation with a valid code after enabling is a no-op.
func (s *Service) confirmTwoFactorEnable(ctx context.Context, acc *Account, code string) error {
	if acc.TwoFactorSecret == "" {
		return ErrTwoFactorNotSetUp
	}
	if err := s.throttle(ctx, totpAttemptKey(acc)); err != nil {
		return err
	}
	ok, err := s.verifyTOTP(acc, code, s.enableWindow)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTOTP
	}
	if acc.TwoFactorEnabled {
		return nil
	}

	err = s.storage.EnableTwoFactor(ctx, acc.ID, acc.TwoFactorSecret)
	if errors.Is(err, ErrStateChanged) {
		current, lerr := s.account(ctx, acc.ID)
		if lerr != nil {
			return lerr
		}
		if current.TwoFactorEnabled && current.TwoFactorSecret == acc.TwoFactorSecret {
			return nil
		}
		// A newer setup replaced the secret this code was checked against.
		return ErrInvalidTOTP
	}
	if err != nil {
		return storageErr(err)
	}
	acc.TwoFactorEnabled = true
	return nil
}

// disableTwoFactor requires the password, an enabled second factor and a valid code, in that order.
func (s *Service) disableTwoFactor(ctx context.Context, acc *Account, password, code string) error {
	if !s.verifyPassword(acc, password) {
		return ErrInvalidPassword
	}
	if !acc.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}
	if err := s.throttle(ctx, totpAttemptKey(acc)); err != nil {
		return err
	}
	ok, err := s.verifyTOTP(acc, code, s.disableWindow)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTOTP
	}

	if err := s.storage.DisableTwoFactor(ctx, acc.ID, acc.TwoFactorSecret); err != nil {
		if errors.Is(err, ErrStateChanged) {
			return ErrTwoFactorNotEnabled
		}
		return storageErr(err)
	}
	acc.TwoFactorEnabled = false
	acc.TwoFactorSecret = ""
	return nil
}

// consumeEmergencyCode scans the stored hashes and, on the first match,
// atomically clears the list together with the second factor.
// It reports false when nothing matches or another request consumed the code first.
func (s *Service) consumeEmergencyCode(ctx context.Context, acc *Account, code string) (bool, error) {
	idx := totp.MatchEmergencyCode(code, acc.EmergencyCodes)
	if idx < 0 {
		return false, nil
	}
	err := s.storage.ConsumeEmergencyCode(ctx, acc.ID, acc.EmergencyCodes[idx])
	if errors.Is(err, ErrStateChanged) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err)
	}
	acc.EmergencyCodes = nil
	acc.TwoFactorEnabled = false
	acc.TwoFactorSecret = ""
	return true, nil
}

func totpAttemptKey(acc *Account) string {
	return "auth:totp:" + acc.ID.String()
}

func emergencyAttemptKey(acc *Account) string {
	return "auth:emergency:" + acc.ID.String()
}
