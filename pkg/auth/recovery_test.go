package auth

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ResetWithEmergencyCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	setup := func(t *testing.T) (*Service, *MemoryStorage, *Account, string) {
		t.Helper()
		svc, storage, clock := newTestService(t)
		acc := createAccount(t, svc, "alice", "p1", RoleAdmin)
		res := enroll(t, svc, clock, login(t, svc, "alice", "p1"))
		return svc, storage, acc, res.EmergencyCode
	}

	t.Run("code works exactly once", func(t *testing.T) {
		t.Parallel()
		svc, storage, acc, code := setup(t)
		in := EmergencyResetInput{Username: "alice", Password: "p1", EmergencyCode: code}

		require.NoError(t, svc.ResetWithEmergencyCode(ctx, in))
		stored, err := storage.GetAccountByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.False(t, stored.TwoFactorEnabled)
		assert.Empty(t, stored.TwoFactorSecret)
		assert.Empty(t, stored.EmergencyCodes)

		// Re-enable so the second attempt reaches the code check.
		again := login(t, svc, "alice", "p1")
		_, err = svc.StartSetup(ctx, again)
		require.NoError(t, err)
		require.NoError(t, storage.EnableTwoFactor(ctx, acc.ID, mustAccount(t, storage, acc).TwoFactorSecret))

		err = svc.ResetWithEmergencyCode(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidEmergencyCode)
		assert.Equal(t, KindInvalidToken, KindOf(err))
	})

	t.Run("second use after reset reports 2FA not enabled", func(t *testing.T) {
		t.Parallel()
		svc, _, _, code := setup(t)
		in := EmergencyResetInput{Username: "alice", Password: "p1", EmergencyCode: code}

		require.NoError(t, svc.ResetWithEmergencyCode(ctx, in))
		assert.ErrorIs(t, svc.ResetWithEmergencyCode(ctx, in), ErrTwoFactorNotEnabled)
	})

	t.Run("code is case insensitive", func(t *testing.T) {
		t.Parallel()
		svc, _, _, code := setup(t)

		err := svc.ResetWithEmergencyCode(ctx, EmergencyResetInput{
			Username:      "alice",
			Password:      "p1",
			EmergencyCode: strings.ToLower(code),
		})
		assert.NoError(t, err)
	})

	t.Run("concurrent use succeeds once", func(t *testing.T) {
		t.Parallel()
		svc, _, _, code := setup(t)
		in := EmergencyResetInput{Username: "alice", Password: "p1", EmergencyCode: code}

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if svc.ResetWithEmergencyCode(ctx, in) == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, successes)
	})

	t.Run("checks run in order", func(t *testing.T) {
		t.Parallel()
		svc, _, _, code := setup(t)
		createAccount(t, svc, "bob", "p2", RoleUser)
		createAccount(t, svc, "root", "p3", RoleAdmin)

		tests := []struct {
			name string
			in   EmergencyResetInput
			want error
		}{
			{"unknown account", EmergencyResetInput{Username: "nobody", Password: "p1", EmergencyCode: code}, ErrAccountNotFound},
			{"non-admin", EmergencyResetInput{Username: "bob", Password: "p2", EmergencyCode: code}, ErrAdminOnly},
			{"wrong password", EmergencyResetInput{Username: "alice", Password: "bad", EmergencyCode: code}, ErrInvalidPassword},
			{"2FA not enabled", EmergencyResetInput{Username: "root", Password: "p3", EmergencyCode: code}, ErrTwoFactorNotEnabled},
			{"wrong code", EmergencyResetInput{Username: "alice", Password: "p1", EmergencyCode: "0000000000000000"}, ErrInvalidEmergencyCode},
		}
		for _, tt := range tests {
			assert.ErrorIs(t, svc.ResetWithEmergencyCode(ctx, tt.in), tt.want, tt.name)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := setup(t)

		err := svc.ResetWithEmergencyCode(ctx, EmergencyResetInput{Username: "alice"})
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

// A non-admin can never use emergency recovery, whatever they send.
func TestService_ResetWithEmergencyCode_NonAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, clock := newTestService(t)
	createAccount(t, svc, "bob", "p2", RoleUser)
	res := enroll(t, svc, clock, login(t, svc, "bob", "p2"))
	require.Empty(t, res.EmergencyCode)

	for _, in := range []EmergencyResetInput{
		{Username: "bob", Password: "p2", EmergencyCode: "0123456789ABCDEF"},
		{Username: "bob", Password: "wrong", EmergencyCode: "0123456789ABCDEF"},
		{Username: "bob", Password: "p2", EmergencyCode: res.Secret},
	} {
		err := svc.ResetWithEmergencyCode(ctx, in)
		assert.ErrorIs(t, err, ErrAdminOnly)
		assert.Equal(t, KindAuthorization, KindOf(err))
	}
}

func mustAccount(t *testing.T, storage *MemoryStorage, acc *Account) *Account {
	t.Helper()
	stored, err := storage.GetAccountByID(context.Background(), acc.ID)
	require.NoError(t, err)
	return stored
}
