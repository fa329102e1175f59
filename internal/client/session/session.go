// Package session holds the client's in-memory authentication state.
//
// A *Session is owned by the auth service, which is its only writer. Every
// other component receives the read-only View. Fields follow last write
// wins; there is no cross-field transaction beyond a single method call.
package session

import (
	"sync"

	"github.com/dmitrijs2005/fleamarket/internal/common"
)

// Identity is what the client believes about the current user, decoded from
// the credential without verification.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == common.RoleAdmin }

// Profile is the locally cached display data of the current user.
type Profile struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Bio      string `json:"bio"`
}

// ProfileUpdate is a partial profile. A nil field is absent and is never
// written, an empty string is written.
type ProfileUpdate struct {
	Nickname *string
	Avatar   *string
	Email    *string
	Phone    *string
	Bio      *string
}

// Empty reports whether no field is present.
func (u ProfileUpdate) Empty() bool {
	return u.Nickname == nil && u.Avatar == nil && u.Email == nil && u.Phone == nil && u.Bio == nil
}

// Snapshot is a consistent copy of the session. The credential is left out
// so snapshots can be printed and logged.
type Snapshot struct {
	Authenticated bool
	Identity      Identity
	Profile       Profile
}

// View is the read-only face of a Session.
type View interface {
	Credential() string
	Identity() (Identity, bool)
	Profile() Profile
	IsAuthenticated() bool
	Role() string
	Snapshot() Snapshot
}

// Session is the single mutable session state.
type Session struct {
	mu         sync.RWMutex
	credential string
	identity   Identity
	profile    Profile
}

var _ View = (*Session)(nil)

func New() *Session {
	return &Session{}
}

// Establish installs a credential together with its identity and profile.
// Identity only exists next to a credential, so an empty credential or user
// id is rejected.
func (s *Session) Establish(credential string, id Identity, p Profile) error {
	if credential == "" || id.UserID == "" {
		return common.ErrInvalidToken
	}
	if id.Role == "" {
		id.Role = common.RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	s.identity = id
	s.profile = p
	return nil
}

// ReplaceProfile overwrites the whole profile.
func (s *Session) ReplaceProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// MergeProfile writes only the fields present in u and returns the result.
func (s *Session) MergeProfile(u ProfileUpdate) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.profile.Nickname, u.Nickname)
	set(&s.profile.Avatar, u.Avatar)
	set(&s.profile.Email, u.Email)
	set(&s.profile.Phone, u.Phone)
	set(&s.profile.Bio, u.Bio)
	return s.profile
}

// Clear drops every field. Clearing an empty session is a no-op.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	s.identity = Identity{}
	s.profile = Profile{}
}

// Credential returns the raw credential or "" when anonymous.
func (s *Session) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

func (s *Session) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.credential != ""
}

func (s *Session) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != ""
}

// Role returns the identity role, or "" when anonymous.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential == "" {
		return ""
	}
	return s.identity.Role
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Authenticated: s.credential != "",
		Identity:      s.identity,
		Profile:       s.profile,
	}
}
