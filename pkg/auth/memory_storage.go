package auth

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process AccountStorage. Records are copied on the
// way in and out, so callers never share memory with the store.
type MemoryStorage struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*Account
	byUsername map[string]uuid.UUID
}

// NewMemoryStorage creates an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:       make(map[uuid.UUID]*Account),
		byUsername: make(map[string]uuid.UUID),
	}
}

func cloneAccount(a *Account) *Account {
	c := *a
	c.PasswordHash = slices.Clone(a.PasswordHash)
	c.EmergencyCodes = slices.Clone(a.EmergencyCodes)
	return &c
}

func (m *MemoryStorage) CreateAccount(_ context.Context, acc *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[acc.Username]; ok {
		return ErrUsernameTaken
	}
	m.byID[acc.ID] = cloneAccount(acc)
	m.byUsername[acc.Username] = acc.ID
	return nil
}

func (m *MemoryStorage) GetAccountByID(_ context.Context, id uuid.UUID) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(acc), nil
}

func (m *MemoryStorage) GetAccountByUsername(_ context.Context, username string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(m.byID[id]), nil
}

// ListAccounts returns every account ordered by username.
func (m *MemoryStorage) ListAccounts(context.Context) ([]*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Account, 0, len(m.byID))
	for _, acc := range m.byID {
		out = append(out, cloneAccount(acc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *MemoryStorage) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash []byte) error {
	return m.update(id, func(a *Account) error {
		a.PasswordHash = slices.Clone(hash)
		return nil
	})
}

func (m *MemoryStorage) UpdateRole(_ context.Context, id uuid.UUID, from, to Role, resetTwoFactor bool) error {
	return m.update(id, func(a *Account) error {
		if a.Role != from {
			return ErrStateChanged
		}
		a.Role = to
		a.EmergencyCodes = nil
		if resetTwoFactor {
			a.TwoFactorEnabled = false
			a.TwoFactorSecret = ""
		}
		return nil
	})
}

func (m *MemoryStorage) DeleteAccount(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	delete(m.byUsername, acc.Username)
	delete(m.byID, id)
	return nil
}

func (m *MemoryStorage) BeginTwoFactor(_ context.Context, id uuid.UUID, sealedSecret string, codeHashes []string) error {
	return m.update(id, func(a *Account) error {
		if a.TwoFactorEnabled {
			return ErrStateChanged
		}
		a.TwoFactorSecret = sealedSecret
		if codeHashes != nil {
			a.EmergencyCodes = slices.Clone(codeHashes)
		}
		return nil
	})
}

func (m *MemoryStorage) EnableTwoFactor(_ context.Context, id uuid.UUID, sealedSecret string) error {
	return m.update(id, func(a *Account) error {
		if a.TwoFactorEnabled || a.TwoFactorSecret != sealedSecret {
			return ErrStateChanged
		}
		a.TwoFactorEnabled = true
		return nil
	})
}

func (m *MemoryStorage) DisableTwoFactor(_ context.Context, id uuid.UUID, sealedSecret string) error {
	return m.update(id, func(a *Account) error {
		if !a.TwoFactorEnabled || a.TwoFactorSecret != sealedSecret {
			return ErrStateChanged
		}
		a.TwoFactorEnabled = false
		a.TwoFactorSecret = ""
		return nil
	})
}

func (m *MemoryStorage) ConsumeEmergencyCode(_ context.Context, id uuid.UUID, codeHash string) error {
	return m.update(id, func(a *Account) error {
		if !a.TwoFactorEnabled || !slices.Contains(a.EmergencyCodes, codeHash) {
			return ErrStateChanged
		}
		a.TwoFactorEnabled = false
		a.TwoFactorSecret = ""
		a.EmergencyCodes = nil
		return nil
	})
}

func (m *MemoryStorage) ResetTwoFactor(_ context.Context, id uuid.UUID) error {
	return m.update(id, func(a *Account) error {
		a.TwoFactorEnabled = false
		a.TwoFactorSecret = ""
		a.EmergencyCodes = nil
		return nil
	})
}

// update applies fn to the stored record under the write lock. fn runs on a
// copy, so a failed precondition leaves the record untouched.
func (m *MemoryStorage) update(id uuid.UUID, fn func(*Account) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	next := cloneAccount(acc)
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().UTC()
	m.byID[id] = next
	return nil
}
