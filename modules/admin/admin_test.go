package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/venuehub/modules/account"
	"github.com/dmitrymomot/venuehub/modules/admin"
	"github.com/dmitrymomot/venuehub/pkg/audit"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/cookie"
	"github.com/dmitrymomot/venuehub/pkg/session"
	authhttp "github.com/dmitrymomot/venuehub/svc/auth"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type accountData struct {
	Username         string    `json:"username"`
	Role             auth.Role `json:"role"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	TwoFactorStatus  string    `json:"twoFactorStatus"`
	PasswordHash     string    `json:"passwordHash"`
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func (c *client) errorCode(method, path string, body any) (int, string) {
	c.t.Helper()
	status, env := c.do(method, path, body)
	if env.Error == nil {
		return status, ""
	}
	return status, env.Error.Code
}

type fixture struct {
	srv  *httptest.Server
	auth *auth.Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	sealer := &plainSealer{}
	trail := audit.NewLogger(audit.NewMemoryStorage(100), audit.WithUserIDExtractor(authhttp.AuditExtractor()))
	authSvc := auth.NewService(auth.NewMemoryStorage(), sealer,
		auth.WithAuditor(trail),
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	)
	for _, in := range []auth.CreateAccountInput{
		{Username: "owner", Password: "s3cret", Role: auth.RoleAdmin},
		{Username: "deputy", Password: "s3cret", Role: auth.RoleAdmin},
		{Username: "staff", Password: "s3cret", Role: auth.RoleUser},
	} {
		_, err := authSvc.CreateAccount(context.Background(), in)
		require.NoError(t, err)
	}

	cookieMgr, err := cookie.New([]string{"test-secret-key-that-is-long-enough"})
	require.NoError(t, err)
	cfg := session.DefaultConfig()
	cfg.CleanupInterval = 0
	sessions := session.New(session.WithCookieManager(cookieMgr), session.WithConfig(cfg))
	t.Cleanup(func() { _ = sessions.Close() })

	r := chi.NewRouter()
	r.Use(sessions.Middleware)
	r.Mount("/", account.Router(account.RouterOptions{
		Account: account.NewService(authSvc, sessions),
		Admin:   admin.NewService(authSvc, nil, admin.WithAuditTrail(trail)),
	}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fixture{srv: srv, auth: authSvc}
}

// plainSealer keeps secrets as is; these tests never read them back.
type plainSealer struct{}

func (plainSealer) Encrypt(s string) (string, error) { return s, nil }
func (plainSealer) Decrypt(s string) (string, error) { return s, nil }

func (f fixture) client(t *testing.T, username string) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &client{t: t, base: f.srv.URL, http: &http.Client{Jar: jar}}
	if username != "" {
		status, _ := c.do(http.MethodPost, "/login", map[string]string{"username": username, "password": "s3cret"})
		require.Equal(t, http.StatusOK, status)
	}
	return c
}

func TestAccess(t *testing.T) {
	t.Parallel()
	f := setup(t)

	tests := []struct {
		name     string
		username string
		status   int
		code     string
	}{
		{"anonymous", "", http.StatusUnauthorized, "unauthenticated"},
		{"regular user", "staff", http.StatusForbidden, "forbidden"},
		{"admin", "owner", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, code := f.client(t, tt.username).errorCode(http.MethodGet, "/admin/users", nil)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestListAndGet(t *testing.T) {
	t.Parallel()
	f := setup(t)
	c := f.client(t, "owner")

	status, env := c.do(http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, status)
	var list []accountData
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 3)
	assert.EqualValues(t, 3, env.Meta["total"])
	for _, a := range list {
		assert.Empty(t, a.PasswordHash)
	}
	assert.NotContains(t, string(env.Data), "assword")

	status, env = c.do(http.MethodGet, "/admin/users/staff", nil)
	require.Equal(t, http.StatusOK, status)
	var got accountData
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, accountData{Username: "staff", Role: auth.RoleUser, TwoFactorStatus: "disabled"}, got)

	status, code := c.errorCode(http.MethodGet, "/admin/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "account_not_found", code)
}

func TestCreate(t *testing.T) {
	t.Parallel()
	f := setup(t)
	c := f.client(t, "owner")

	status, env := c.do(http.MethodPost, "/admin/users", map[string]string{"username": "carol", "password": "pw"})
	require.Equal(t, http.StatusCreated, status)
	var created accountData
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "carol", created.Username)
	assert.Equal(t, auth.RoleUser, created.Role)

	// The new account can log in.
	login := f.client(t, "")
	status, _ = login.do(http.MethodPost, "/login", map[string]string{"username": "carol", "password": "pw"})
	assert.Equal(t, http.StatusOK, status)

	tests := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{"duplicate username", map[string]string{"username": "carol", "password": "pw"}, http.StatusConflict, "username_taken"},
		{"missing password", map[string]string{"username": "dave"}, http.StatusUnprocessableEntity, "validation_error"},
		{"unknown role", map[string]string{"username": "dave", "password": "pw", "role": "boss"}, http.StatusUnprocessableEntity, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := c.errorCode(http.MethodPost, "/admin/users", tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	f := setup(t)
	c := f.client(t, "owner")

	status, env := c.do(http.MethodPut, "/admin/users/staff", map[string]string{"role": "admin", "password": "n3w"})
	require.Equal(t, http.StatusOK, status)
	var updated accountData
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "staff", updated.Username)
	assert.Equal(t, auth.RoleAdmin, updated.Role)

	other := f.client(t, "")
	status, _ = other.do(http.MethodPost, "/login", map[string]string{"username": "staff", "password": "n3w"})
	assert.Equal(t, http.StatusOK, status)

	status, code := c.errorCode(http.MethodPut, "/admin/users/staff", map[string]string{"role": "boss"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_role", code)

	status, code = c.errorCode(http.MethodPut, "/admin/users/staff", map[string]string{"password": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password_required", code)

	status, code = c.errorCode(http.MethodPut, "/admin/users/ghost", map[string]string{"role": "user"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "account_not_found", code)
}

func TestRoleChange(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	owner := f.client(t, "owner")
	deputy := f.client(t, "deputy")

	status, _ := deputy.do(http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = owner.do(http.MethodPut, "/admin/users/deputy", map[string]string{"role": "user"})
	require.Equal(t, http.StatusOK, status)

	// The session from before the demotion no longer opens the back office.
	status, code := deputy.errorCode(http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", code)

	acc, err := f.auth.GetAccount(ctx, "staff")
	require.NoError(t, err)
	state := auth.Authenticated(auth.Identity{AccountID: acc.ID, Username: acc.Username, Role: acc.Role})
	_, err = f.auth.StartSetup(ctx, state)
	require.NoError(t, err)

	status, env := owner.do(http.MethodPut, "/admin/users/staff", map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, status)
	var promoted accountData
	require.NoError(t, json.Unmarshal(env.Data, &promoted))
	assert.Equal(t, auth.RoleAdmin, promoted.Role)
	assert.Equal(t, "disabled", promoted.TwoFactorStatus)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	f := setup(t)
	c := f.client(t, "owner")

	status, code := c.errorCode(http.MethodDelete, "/admin/users/owner", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", code)

	status, _ = c.do(http.MethodDelete, "/admin/users/deputy", nil)
	require.Equal(t, http.StatusNoContent, status)

	status, code = c.errorCode(http.MethodGet, "/admin/users/deputy", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "account_not_found", code)

	status, _ = c.do(http.MethodDelete, "/admin/users/deputy", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestResetTwoFactor(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	for _, username := range []string{"staff", "deputy"} {
		acc, err := f.auth.GetAccount(ctx, username)
		require.NoError(t, err)
		state := auth.Authenticated(auth.Identity{AccountID: acc.ID, Username: acc.Username, Role: acc.Role})
		_, err = f.auth.StartSetup(ctx, state)
		require.NoError(t, err)
	}

	c := f.client(t, "owner")

	status, env := c.do(http.MethodPost, "/admin/users/staff/reset-2fa", nil)
	require.Equal(t, http.StatusOK, status)
	var reset accountData
	require.NoError(t, json.Unmarshal(env.Data, &reset))
	assert.False(t, reset.TwoFactorEnabled)
	assert.Equal(t, "disabled", reset.TwoFactorStatus)

	status, code := c.errorCode(http.MethodPost, "/admin/users/deputy/reset-2fa", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "admin_target", code)

	acc, err := f.auth.GetAccount(ctx, "deputy")
	require.NoError(t, err)
	assert.Equal(t, auth.TwoFactorProvisioning, acc.TwoFactorStatus())

	status, code = f.client(t, "staff").errorCode(http.MethodPost, "/admin/users/staff/reset-2fa", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", code)
}

func TestAuditTrail(t *testing.T) {
	t.Parallel()
	f := setup(t)
	owner := f.client(t, "owner")

	status, _ := owner.do(http.MethodPut, "/admin/users/deputy", map[string]string{"role": "user"})
	require.Equal(t, http.StatusOK, status)
	status, _ = owner.do(http.MethodPost, "/admin/users/owner/reset-2fa", nil)
	require.Equal(t, http.StatusForbidden, status)

	type eventData struct {
		Action    string         `json:"action"`
		Result    string         `json:"result"`
		Error     string         `json:"error"`
		ActorID   string         `json:"actorId"`
		AccountID string         `json:"accountId"`
		Metadata  map[string]any `json:"metadata"`
	}
	events := func(t *testing.T, query string) []eventData {
		t.Helper()
		status, env := owner.do(http.MethodGet, "/admin/audit"+query, nil)
		require.Equal(t, http.StatusOK, status)
		var out []eventData
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.EqualValues(t, len(out), env.Meta["total"])
		return out
	}

	ownerAcc, err := f.auth.GetAccount(context.Background(), "owner")
	require.NoError(t, err)
	deputyAcc, err := f.auth.GetAccount(context.Background(), "deputy")
	require.NoError(t, err)

	t.Run("per account newest first", func(t *testing.T) {
		got := events(t, "?username=deputy")
		require.Len(t, got, 2)
		assert.Equal(t, auth.AuditRoleChanged, got[0].Action)
		assert.Equal(t, ownerAcc.ID.String(), got[0].ActorID)
		assert.Equal(t, deputyAcc.ID.String(), got[0].AccountID)
		assert.Equal(t, "admin", got[0].Metadata["from"])
		assert.Equal(t, "user", got[0].Metadata["to"])
		assert.Equal(t, auth.AuditAccountCreated, got[1].Action)
		assert.Empty(t, got[1].ActorID)
	})

	t.Run("refused admin reset is recorded", func(t *testing.T) {
		got := events(t, "?result=error")
		require.Len(t, got, 1)
		assert.Equal(t, auth.AuditAdminReset, got[0].Action)
		assert.Equal(t, ownerAcc.ID.String(), got[0].AccountID)
		assert.NotEmpty(t, got[0].Error)
	})

	t.Run("limit and action", func(t *testing.T) {
		assert.Len(t, events(t, "?limit=2"), 2)
		assert.Len(t, events(t, "?action="+auth.AuditAccountCreated), 3)
	})

	t.Run("bad requests", func(t *testing.T) {
		tests := []struct {
			query  string
			status int
		}{
			{"?result=maybe", http.StatusUnprocessableEntity},
			{"?limit=-1", http.StatusUnprocessableEntity},
			{"?limit=ten", http.StatusBadRequest},
			{"?username=ghost", http.StatusNotFound},
		}
		for _, tt := range tests {
			status, _ := owner.do(http.MethodGet, "/admin/audit"+tt.query, nil)
			assert.Equal(t, tt.status, status, tt.query)
		}
	})

	t.Run("admins only", func(t *testing.T) {
		status, _ := f.client(t, "staff").do(http.MethodGet, "/admin/audit", nil)
		assert.Equal(t, http.StatusForbidden, status)
		status, _ = f.client(t, "deputy").do(http.MethodGet, "/admin/audit", nil)
		assert.Equal(t, http.StatusForbidden, status)
	})
}
