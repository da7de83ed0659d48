package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/venuehub/pkg/validator"
)

func TestService_CreateAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("defaults to user role", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)

		acc, err := svc.CreateAccount(ctx, CreateAccountInput{Username: "sam", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, RoleUser, acc.Role)
		assert.NotEqual(t, []byte("pw"), acc.PasswordHash)
		assert.Equal(t, TwoFactorDisabled, acc.TwoFactorStatus())
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)
		createAccount(t, svc, "sam", "pw", RoleUser)

		_, err := svc.CreateAccount(ctx, CreateAccountInput{Username: "sam", Password: "other"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)

		_, err := svc.CreateAccount(ctx, CreateAccountInput{Username: "", Password: "", Role: "owner"})
		require.Error(t, err)
		verrs := validator.ExtractValidationErrors(err)
		assert.True(t, verrs.Has("username"))
		assert.True(t, verrs.Has("password"))
		assert.True(t, verrs.Has("role"))
	})
}

func TestService_UpdateAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	createAccount(t, svc, "tina", "old", RoleUser)

	newPassword := "new"
	admin := RoleAdmin
	acc, err := svc.UpdateAccount(ctx, "tina", UpdateAccountInput{Password: &newPassword, Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, acc.Role)

	_, _, err = svc.Login(ctx, Anonymous(), LoginInput{Username: "tina", Password: "old"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	state := login(t, svc, "tina", "new")
	id, _ := state.Identity()
	assert.Equal(t, RoleAdmin, id.Role)

	bad := Role("owner")
	_, err = svc.UpdateAccount(ctx, "tina", UpdateAccountInput{Role: &bad})
	assert.ErrorIs(t, err, ErrInvalidRole)

	empty := ""
	_, err = svc.UpdateAccount(ctx, "tina", UpdateAccountInput{Password: &empty})
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = svc.UpdateAccount(ctx, "nobody", UpdateAccountInput{})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestService_DeleteAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	createAccount(t, svc, "root", "pw", RoleAdmin)
	createAccount(t, svc, "uma", "pw", RoleUser)
	actor, err := svc.RequireAdmin(ctx, login(t, svc, "root", "pw"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, actor, "root"), ErrForbidden)
	require.NoError(t, svc.DeleteAccount(ctx, actor, "uma"))
	assert.ErrorIs(t, svc.DeleteAccount(ctx, actor, "uma"), ErrAccountNotFound)

	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "root", accounts[0].Username)
}

func TestService_ResetTwoFactor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, clock := newTestService(t)
	createAccount(t, svc, "vic", "pw", RoleUser)
	createAccount(t, svc, "root", "pw", RoleAdmin)
	enroll(t, svc, clock, login(t, svc, "vic", "pw"))
	enroll(t, svc, clock, login(t, svc, "root", "pw"))

	acc, err := svc.ResetTwoFactor(ctx, "vic")
	require.NoError(t, err)
	assert.Equal(t, TwoFactorDisabled, acc.TwoFactorStatus())
	stored, err := svc.GetAccount(ctx, "vic")
	require.NoError(t, err)
	assert.Equal(t, TwoFactorDisabled, stored.TwoFactorStatus())
	login(t, svc, "vic", "pw")

	_, err = svc.ResetTwoFactor(ctx, "nobody")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.ResetTwoFactor(ctx, "root")
	assert.ErrorIs(t, err, ErrAdminTarget)
	assert.Equal(t, KindAuthorization, KindOf(err))
}

func TestService_RequireAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	createAccount(t, svc, "wes", "pw", RoleUser)
	createAccount(t, svc, "root", "pw", RoleAdmin)
	createAccount(t, svc, "ada", "pw", RoleAdmin)
	createAccount(t, svc, "gus", "pw", RoleAdmin)

	_, err := svc.RequireAdmin(ctx, Anonymous())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.RequireAdmin(ctx, login(t, svc, "wes", "pw"))
	assert.ErrorIs(t, err, ErrForbidden)

	root := login(t, svc, "root", "pw")
	id, err := svc.RequireAdmin(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, "root", id.Username)

	t.Run("demoted admin keeps session but loses access", func(t *testing.T) {
		state := login(t, svc, "ada", "pw")
		user := RoleUser
		_, err := svc.UpdateAccount(ctx, "ada", UpdateAccountInput{Role: &user})
		require.NoError(t, err)

		_, err = svc.RequireAdmin(ctx, state)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("deleted admin is unauthenticated", func(t *testing.T) {
		state := login(t, svc, "gus", "pw")
		actor, err := svc.RequireAdmin(ctx, root)
		require.NoError(t, err)
		require.NoError(t, svc.DeleteAccount(ctx, actor, "gus"))

		_, err = svc.RequireAdmin(ctx, state)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestService_UpdateAccountRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("demotion drops the emergency code and keeps 2FA", func(t *testing.T) {
		t.Parallel()
		svc, _, clock := newTestService(t)
		createAccount(t, svc, "root", "pw", RoleAdmin)
		setup := enroll(t, svc, clock, login(t, svc, "root", "pw"))
		require.NotEmpty(t, setup.EmergencyCode)

		user := RoleUser
		acc, err := svc.UpdateAccount(ctx, "root", UpdateAccountInput{Role: &user})
		require.NoError(t, err)
		assert.Equal(t, RoleUser, acc.Role)
		assert.Empty(t, acc.EmergencyCodes)

		stored, err := svc.GetAccount(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, RoleUser, stored.Role)
		assert.Empty(t, stored.EmergencyCodes)
		assert.Equal(t, TwoFactorEnabled, stored.TwoFactorStatus())

		// The demoted account is now recoverable by an admin.
		_, err = svc.ResetTwoFactor(ctx, "root")
		require.NoError(t, err)
	})

	t.Run("promotion resets 2FA so the admin re-enrols with a code", func(t *testing.T) {
		t.Parallel()
		svc, _, clock := newTestService(t)
		createAccount(t, svc, "bob", "pw", RoleUser)
		first := enroll(t, svc, clock, login(t, svc, "bob", "pw"))
		assert.Empty(t, first.EmergencyCode)

		admin := RoleAdmin
		acc, err := svc.UpdateAccount(ctx, "bob", UpdateAccountInput{Role: &admin})
		require.NoError(t, err)
		assert.Equal(t, TwoFactorDisabled, acc.TwoFactorStatus())

		stored, err := svc.GetAccount(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, stored.Role)
		assert.Equal(t, TwoFactorDisabled, stored.TwoFactorStatus())

		second := enroll(t, svc, clock, login(t, svc, "bob", "pw"))
		assert.NotEmpty(t, second.EmergencyCode)
	})

	t.Run("unchanged role leaves 2FA alone", func(t *testing.T) {
		t.Parallel()
		svc, _, clock := newTestService(t)
		createAccount(t, svc, "root", "pw", RoleAdmin)
		enroll(t, svc, clock, login(t, svc, "root", "pw"))

		admin := RoleAdmin
		_, err := svc.UpdateAccount(ctx, "root", UpdateAccountInput{Role: &admin})
		require.NoError(t, err)
		stored, err := svc.GetAccount(ctx, "root")
		require.NoError(t, err)
		assert.Len(t, stored.EmergencyCodes, 1)
		assert.Equal(t, TwoFactorEnabled, stored.TwoFactorStatus())
	})

	t.Run("concurrent role change reports conflict", func(t *testing.T) {
		t.Parallel()
		acc := &Account{ID: uuid.New(), Username: "bob", Role: RoleUser}
		storage := &MockAccountStorage{}
		storage.On("GetAccountByUsername", mock.Anything, "bob").Return(acc, nil)
		storage.On("UpdateRole", mock.Anything, acc.ID, RoleUser, RoleAdmin, true).Return(ErrStateChanged)
		svc := NewService(storage, testSealer(t), WithBcryptCost(bcrypt.MinCost))

		admin := RoleAdmin
		_, err := svc.UpdateAccount(ctx, "bob", UpdateAccountInput{Role: &admin})
		assert.ErrorIs(t, err, ErrAccountChanged)
		assert.Equal(t, KindConflict, KindOf(err))
		storage.AssertExpectations(t)
	})
}

func TestService_SeedDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.SeedDefaults(ctx))
	require.NoError(t, svc.SeedDefaults(ctx))

	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "admin", accounts[0].Username)
	assert.Equal(t, RoleAdmin, accounts[0].Role)
	assert.Equal(t, "user", accounts[1].Username)
	assert.Equal(t, RoleUser, accounts[1].Role)

	login(t, svc, "admin", "admin")
	login(t, svc, "user", "user")
}
