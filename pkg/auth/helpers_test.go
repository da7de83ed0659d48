package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/venuehub/pkg/totp"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testSealer(t *testing.T) *totp.SecretBox {
	t.Helper()
	box, err := totp.NewSecretBox([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return box
}

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryStorage, *testClock) {
	t.Helper()
	storage := NewMemoryStorage()
	clock := newTestClock()
	opts = append([]Option{WithClock(clock.Now), WithBcryptCost(bcrypt.MinCost)}, opts...)
	return NewService(storage, testSealer(t), opts...), storage, clock
}

func createAccount(t *testing.T, svc *Service, username, password string, role Role) *Account {
	t.Helper()
	acc, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Username: username,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return acc
}

func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateTOTPWithTime(secret, at)
	require.NoError(t, err)
	return code
}

// wrongCode returns a well-formed code that differs from every code valid at
// the given time within a window of two steps.
func wrongCode(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	valid := make(map[string]bool)
	for i := -2; i <= 2; i++ {
		valid[codeAt(t, secret, at.Add(time.Duration(i)*30*time.Second))] = true
	}
	for _, c := range []string{"000000", "111111", "222222", "333333", "444444", "555555"} {
		if !valid[c] {
			return c
		}
	}
	t.Fatal("no wrong code candidate")
	return ""
}

func login(t *testing.T, svc *Service, username, password string) State {
	t.Helper()
	state, res, err := svc.Login(context.Background(), Anonymous(), LoginInput{Username: username, Password: password})
	require.NoError(t, err)
	require.False(t, res.Requires2FA)
	return state
}

// enroll runs setup and confirmation for an authenticated state.
func enroll(t *testing.T, svc *Service, clock *testClock, state State) SetupResult {
	t.Helper()
	ctx := context.Background()
	res, err := svc.StartSetup(ctx, state)
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmSetup(ctx, state, codeAt(t, res.Secret, clock.Now())))
	return res
}
