package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillhub/identity"
)

// MemoryStore is an in-process identity.Store with the same semantics as
// the bun-backed store, including conditional monotonic flag updates. It is
// safe for concurrent use.
type MemoryStore struct {
	mu        sync.Mutex
	accounts  map[uuid.UUID]identity.Account
	emails    map[string]uuid.UUID
	artifacts map[uuid.UUID]identity.VerificationArtifact
	refresh   map[uuid.UUID]identity.RefreshToken
	secrets   map[string]uuid.UUID
}

var _ identity.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  map[uuid.UUID]identity.Account{},
		emails:    map[string]uuid.UUID{},
		artifacts: map[uuid.UUID]identity.VerificationArtifact{},
		refresh:   map[uuid.UUID]identity.RefreshToken{},
		secrets:   map[string]uuid.UUID{},
	}
}

func (s *MemoryStore) Accounts() identity.AccountStore { return (*memoryAccounts)(s) }

func (s *MemoryStore) Artifacts() identity.ArtifactStore { return (*memoryArtifacts)(s) }

func (s *MemoryStore) RefreshTokens() identity.RefreshTokenStore { return (*memoryRefresh)(s) }

type memoryAccounts MemoryStore

func (s *memoryAccounts) GetByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneAccount(account), nil
}

func (s *memoryAccounts) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrRecordNotFound
	}
	account := s.accounts[id]
	return cloneAccount(account), nil
}

func (s *memoryAccounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.emails[email]
	return ok, nil
}

func (s *memoryAccounts) Create(ctx context.Context, account *identity.Account) (*identity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[account.Email]; taken {
		return nil, identity.ErrEmailTaken
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	s.accounts[account.ID] = *cloneAccount(*account)
	s.emails[account.Email] = account.ID
	return cloneAccount(s.accounts[account.ID]), nil
}

func (s *memoryAccounts) Update(ctx context.Context, account *identity.Account) (*identity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[account.ID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if current.Email != account.Email {
		delete(s.emails, current.Email)
		s.emails[account.Email] = account.ID
	}

	s.accounts[account.ID] = *cloneAccount(*account)
	return cloneAccount(s.accounts[account.ID]), nil
}

type memoryArtifacts MemoryStore

func (s *memoryArtifacts) Create(ctx context.Context, artifact *identity.VerificationArtifact) (*identity.VerificationArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if artifact.ID == uuid.Nil {
		artifact.ID = uuid.New()
	}
	s.artifacts[artifact.ID] = *artifact
	copied := s.artifacts[artifact.ID]
	return &copied, nil
}

func (s *memoryArtifacts) GetLiveBySecret(ctx context.Context, secret string, purpose identity.ArtifactPurpose, now time.Time) (*identity.VerificationArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var live []identity.VerificationArtifact
	for _, artifact := range s.artifacts {
		if artifact.Secret == secret && artifact.Purpose == purpose && artifact.Live(now) {
			live = append(live, artifact)
		}
	}
	if len(live) == 0 {
		return nil, ErrRecordNotFound
	}

	// the most recent valid match is authoritative
	sort.Slice(live, func(i, j int) bool {
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})
	return &live[0], nil
}

func (s *memoryArtifacts) MarkUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifact, ok := s.artifacts[id]
	if !ok || artifact.Used {
		return false, nil
	}
	artifact.Used = true
	s.artifacts[id] = artifact
	return true, nil
}

func (s *memoryArtifacts) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, artifact := range s.artifacts {
		if !now.Before(artifact.ExpiresAt) {
			delete(s.artifacts, id)
			purged++
		}
	}
	return purged, nil
}

type memoryRefresh MemoryStore

func (s *memoryRefresh) Create(ctx context.Context, token *identity.RefreshToken) (*identity.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	s.refresh[token.ID] = *token
	s.secrets[token.Secret] = token.ID
	copied := s.refresh[token.ID]
	return &copied, nil
}

func (s *memoryRefresh) GetBySecret(ctx context.Context, secret string) (*identity.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.secrets[secret]
	if !ok {
		return nil, ErrRecordNotFound
	}
	token := s.refresh[id]
	return &token, nil
}

func (s *memoryRefresh) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revoked := 0
	for id, token := range s.refresh {
		if token.AccountID == accountID && !token.Revoked {
			token.Revoked = true
			s.refresh[id] = token
			revoked++
		}
	}
	return revoked, nil
}

func cloneAccount(account identity.Account) *identity.Account {
	copied := account
	copied.Roles = append([]string(nil), account.Roles...)
	if account.LastLogin != nil {
		t := *account.LastLogin
		copied.LastLogin = &t
	}
	return &copied
}
