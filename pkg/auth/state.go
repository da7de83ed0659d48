package auth

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type stage uint8

const (
	stageAnonymous stage = iota
	stagePending
	stageAuthenticated
)

// State is the session's identity slot: anonymous, pending a second factor,
// or authenticated. Fields are unexported so pending and authenticated can
// never be populated at the same time.
type State struct {
	stage     stage
	accountID uuid.UUID
	username  string
	role      Role
	loginAt   time.Time
}

// Anonymous returns the empty state.
func Anonymous() State {
	return State{}
}

// Pending returns the state between password verification and second factor verification.
func Pending(accountID uuid.UUID, username string) State {
	return State{stage: stagePending, accountID: accountID, username: username}
}

// Authenticated returns a fully logged in state.
func Authenticated(id Identity) State {
	return State{
		stage:     stageAuthenticated,
		accountID: id.AccountID,
		username:  id.Username,
		role:      id.Role,
		loginAt:   id.LoginAt,
	}
}

func (s State) IsAnonymous() bool     { return s.stage == stageAnonymous }
func (s State) IsPending() bool       { return s.stage == stagePending }
func (s State) IsAuthenticated() bool { return s.stage == stageAuthenticated }

// PendingAccount returns the account awaiting a second factor.
func (s State) PendingAccount() (uuid.UUID, string, bool) {
	if s.stage != stagePending {
		return uuid.Nil, "", false
	}
	return s.accountID, s.username, true
}

// Identity returns the authenticated identity. Pending states never yield one.
func (s State) Identity() (Identity, bool) {
	if s.stage != stageAuthenticated {
		return Identity{}, false
	}
	return Identity{
		AccountID: s.accountID,
		Username:  s.username,
		Role:      s.role,
		LoginAt:   s.loginAt,
	}, true
}

func (s State) String() string {
	switch s.stage {
	case stagePending:
		return "pending"
	case stageAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

type stateJSON struct {
	Stage     string    `json:"stage"`
	AccountID uuid.UUID `json:"accountId,omitzero"`
	Username  string    `json:"username,omitempty"`
	Role      Role      `json:"role,omitempty"`
	LoginAt   time.Time `json:"loginAt,omitzero"`
}

// MarshalJSON lets session stores persist the state.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Stage:     s.String(),
		AccountID: s.accountID,
		Username:  s.username,
		Role:      s.role,
		LoginAt:   s.loginAt,
	})
}

// UnmarshalJSON restores a persisted state. Anything inconsistent decodes as anonymous.
func (s *State) UnmarshalJSON(data []byte) error {
	var w stateJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Stage == "pending" && w.AccountID != uuid.Nil:
		*s = Pending(w.AccountID, w.Username)
	case w.Stage == "authenticated" && w.AccountID != uuid.Nil && w.Role.Valid():
		*s = Authenticated(Identity{
			AccountID: w.AccountID,
			Username:  w.Username,
			Role:      w.Role,
			LoginAt:   w.LoginAt,
		})
	default:
		*s = Anonymous()
	}
	return nil
}
