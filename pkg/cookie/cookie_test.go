package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venuehub/pkg/cookie"
)

const (
	secret    = "this-is-a-very-long-secret-key-32-chars-long"
	oldSecret = "this-is-old-very-long-secret-key-32-chars-ok"
)

// roundTrip copies the cookies written to rec into a fresh request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{"no secrets", nil, cookie.ErrNoSecret},
		{"empty secrets", []string{"", ""}, cookie.ErrNoSecret},
		{"secret too short", []string{"short"}, cookie.ErrSecretTooShort},
		{"valid", []string{secret}, nil},
		{"rotation", []string{secret, oldSecret}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cookie.New(tt.secrets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestManager_Encrypted(t *testing.T) {
	t.Parallel()

	t.Run("round trip hides the value", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{secret}, cookie.WithSecure(true))
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, m.SetEncrypted(rec, "sid", "token-value", cookie.WithMaxAge(60)))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.NotContains(t, c.Value, "token-value")
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, 60, c.MaxAge)
		assert.Equal(t, "/", c.Path)

		got, err := m.GetEncrypted(roundTrip(rec), "sid")
		require.NoError(t, err)
		assert.Equal(t, "token-value", got)
	})

	t.Run("each write uses a fresh nonce", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{secret})
		require.NoError(t, err)

		a, b := httptest.NewRecorder(), httptest.NewRecorder()
		require.NoError(t, m.SetEncrypted(a, "sid", "same"))
		require.NoError(t, m.SetEncrypted(b, "sid", "same"))
		assert.NotEqual(t, a.Result().Cookies()[0].Value, b.Result().Cookies()[0].Value)
	})

	t.Run("rotated secret still opens old cookies", func(t *testing.T) {
		t.Parallel()
		old, err := cookie.New([]string{oldSecret})
		require.NoError(t, err)
		rotated, err := cookie.New([]string{secret, oldSecret})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, old.SetEncrypted(rec, "sid", "v"))
		got, err := rotated.GetEncrypted(roundTrip(rec), "sid")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("foreign or tampered values are rejected", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{secret})
		require.NoError(t, err)
		other, err := cookie.New([]string{oldSecret})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, other.SetEncrypted(rec, "sid", "v"))
		_, err = m.GetEncrypted(roundTrip(rec), "sid")
		assert.ErrorIs(t, err, cookie.ErrDecryptionFailed)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "!!not-base64!!"})
		_, err = m.GetEncrypted(req, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "abc"})
		_, err = m.GetEncrypted(req, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New([]string{secret})
		require.NoError(t, err)

		_, err = m.GetEncrypted(httptest.NewRequest(http.MethodGet, "/", nil), "sid")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()
	m, err := cookie.New([]string{secret}, cookie.WithDomain("example.com"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Delete(rec, "sid")
	header := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "sid=;"))
	assert.Contains(t, header, "Max-Age=0")
	assert.Contains(t, header, "Domain=example.com")
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	m, err := cookie.NewFromConfig(cookie.Config{
		Secrets:  " " + secret + " , " + oldSecret,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetEncrypted(rec, "sid", "v"))
	c := rec.Result().Cookies()[0]
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	_, err = cookie.NewFromConfig(cookie.Config{})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
