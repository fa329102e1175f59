// Package credential keeps the bearer credential and the cached profile
// summary in the local database so a session survives a restart.
package credential

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fleamarket/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fleamarket/internal/common"
	"github.com/dmitrijs2005/fleamarket/internal/dbx"
)

// DefaultTTL is how long a saved credential stays readable.
const DefaultTTL = 7 * 24 * time.Hour

// ProfileSummary is the subset of the profile shown before the first
// refresh completes.
type ProfileSummary struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// RepositoryFactory binds a metadata repository to a connection or to the
// transaction of a multi-key change.
type RepositoryFactory func(db dbx.DBTX) metadata.Repository

// Store is the single writer of the persisted credential.
type Store struct {
	db      *sql.DB
	ttl     time.Duration
	now     func() time.Time
	newRepo RepositoryFactory
}

// NewStore keeps the credential in the SQLite metadata table.
func NewStore(db *sql.DB, ttl time.Duration) *Store {
	s := NewStoreWithRepository(db, ttl, nil)
	s.newRepo = func(q dbx.DBTX) metadata.Repository {
		return metadata.NewSQLiteRepository(q).WithClock(s.now)
	}
	return s
}

// NewStoreWithRepository is NewStore over another metadata.Repository
// implementation. A nil factory means the SQLite one.
func NewStoreWithRepository(db *sql.DB, ttl time.Duration, newRepo RepositoryFactory) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if newRepo == nil {
		newRepo = func(q dbx.DBTX) metadata.Repository { return metadata.NewSQLiteRepository(q) }
	}
	return &Store{db: db, ttl: ttl, now: time.Now, newRepo: newRepo}
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return s.newRepo(db)
}

// Load returns the saved credential, or "" when there is none or it expired.
func (s *Store) Load(ctx context.Context) (string, error) {
	v, err := s.repo(s.db).Get(ctx, common.CredentialKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Save overwrites the credential and restarts its TTL.
func (s *Store) Save(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("save credential: %w", common.ErrorEmptyInput)
	}
	return s.repo(s.db).Set(ctx, common.CredentialKey, []byte(token), s.now().Add(s.ttl))
}

// Remove deletes the credential and the cached profile summary together.
// Removing what is not there is not an error.
func (s *Store) Remove(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Delete(ctx, common.CredentialKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.ProfileInfoKey)
	})
}

// LoadProfile returns the cached summary; a missing or unreadable cache
// yields the zero summary.
func (s *Store) LoadProfile(ctx context.Context) (ProfileSummary, error) {
	var p ProfileSummary
	v, err := s.repo(s.db).Get(ctx, common.ProfileInfoKey)
	if err != nil || v == nil {
		return p, err
	}
	if err := json.Unmarshal(v, &p); err != nil {
		return ProfileSummary{}, nil
	}
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p ProfileSummary) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.repo(s.db).Set(ctx, common.ProfileInfoKey, b, time.Time{})
}
