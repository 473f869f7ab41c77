package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tillware/posgate/pkg/auth"
	"github.com/tillware/posgate/pkg/client"
	"github.com/tillware/posgate/pkg/observability"
	"github.com/tillware/posgate/pkg/rbac"
)

// State is the lifecycle phase of the session store
type State string

const (
	StateUninitialized  State = "uninitialized"
	StateRestoring      State = "restoring"
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// ErrNotAuthenticated is returned by operations that need a live session
var ErrNotAuthenticated = errors.New("not authenticated")

// Authority is the subset of the backend client the store depends on
type Authority interface {
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
	VerifyToken(ctx context.Context) (bool, error)
	SelfPermissions(ctx context.Context) ([]string, error)
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// StoreConfig configures a session store
type StoreConfig struct {
	Authority   Authority
	Credentials *CredentialFile
	Codec       *auth.Codec
	CacheSize   int
	FallbackTTL time.Duration
	Logger      *observability.Logger
	Metrics     *observability.Metrics
}

// Store holds the current credential, identity, effective permission set,
// and decision cache behind one mutex. It implements rbac.Session for the
// resolver and client.TokenProvider for the backend client.
type Store struct {
	authority Authority
	creds     *CredentialFile
	codec     *auth.Codec
	log       *observability.Logger
	metrics   *observability.Metrics

	mu        sync.RWMutex
	state     State
	token     string
	identity  auth.Identity
	userID    int64
	effective rbac.Set
	cache     *rbac.Cache
	epoch     uint64
}

// NewStore creates a store in the Uninitialized state. Call Restore before
// serving permission checks.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Codec == nil {
		cfg.Codec = auth.NewCodec()
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NopMetrics()
	}
	return &Store{
		authority: cfg.Authority,
		creds:     cfg.Credentials,
		codec:     cfg.Codec,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		state:     StateUninitialized,
		effective: rbac.Set{},
		cache:     rbac.NewCache(cfg.CacheSize, cfg.FallbackTTL, cfg.Metrics),
	}
}

// Restore loads a persisted credential and validates it. Missing, malformed,
// or expired credentials leave the store Anonymous; a credential the
// authority rejects is discarded. An unreachable authority is not grounds
// for logout: the locally decoded identity stands and later permission
// checks degrade to the local policy table.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	s.setStateLocked(StateRestoring)
	s.mu.Unlock()

	token, err := s.creds.Load()
	if err != nil {
		s.log.WithError(err).Warn("failed to load persisted credentials")
		s.becomeAnonymous()
		return err
	}
	if token == "" {
		s.becomeAnonymous()
		return nil
	}

	identity, err := s.codec.Decode(token)
	if err != nil || s.codec.IsExpired(token) {
		s.log.WithField("reason", "invalid or expired credential").Info("discarding persisted session")
		s.discardCredential()
		s.becomeAnonymous()
		return nil
	}

	// Make the token visible to the client before verification so the
	// request carries it.
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	valid, err := s.authority.VerifyToken(ctx)
	if err != nil {
		s.log.WithError(err).Warn("authority unreachable during restore, continuing with local identity")
	} else if !valid {
		s.log.WithField("subject", identity.Subject).Info("authority rejected persisted credential")
		s.discardCredential()
		s.mu.Lock()
		s.token = ""
		s.mu.Unlock()
		s.becomeAnonymous()
		return nil
	}

	effective := s.fetchPermissions(ctx, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.effective = effective
	s.epoch++
	s.cache.Clear()
	s.setStateLocked(StateAuthenticated)
	s.log.WithFields(map[string]interface{}{
		"subject": identity.Subject,
		"role":    string(identity.Role),
	}).Info("session restored")
	return nil
}

// Login authenticates and replaces the current session on success. During
// the exchange the store reports no identity, so concurrent permission
// checks fail closed rather than answer for the outgoing principal. A failed
// attempt leaves the store Anonymous with nothing persisted.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.setStateLocked(StateAuthenticating)
	s.mu.Unlock()

	resp, err := s.authority.Login(ctx, username, password)
	if err != nil {
		if delErr := s.creds.Delete(); delErr != nil {
			s.log.WithError(delErr).Warn("failed to remove persisted credentials")
		}
		s.becomeAnonymous()
		return err
	}

	identity, decodeErr := s.codec.Decode(resp.AccessToken)
	if decodeErr != nil {
		identity = auth.Identity{Subject: resp.User.Username}
	}
	if identity.Role == "" || resp.User.Role != "" {
		identity.Role = resp.User.Role
	}
	if identity.Subject == "" {
		identity.Subject = resp.User.Username
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.identity = identity
	s.userID = resp.User.ID
	s.effective = rbac.Set{}
	s.epoch++
	s.cache.Clear()
	s.setStateLocked(StateAuthenticated)
	s.mu.Unlock()

	if err := s.creds.Store(resp.AccessToken); err != nil {
		// The session is live either way; only persistence across restarts
		// is lost.
		s.log.WithError(err).Warn("failed to persist credentials")
	}

	effective := s.fetchPermissions(ctx, resp.User.ID)
	s.mu.Lock()
	if s.state == StateAuthenticated && s.token == resp.AccessToken {
		s.effective = effective
	}
	s.mu.Unlock()

	s.log.WithFields(map[string]interface{}{
		"subject": identity.Subject,
		"role":    string(identity.Role),
	}).Info("login succeeded")
	return nil
}

// Logout drops the session and the persisted credential
func (s *Store) Logout(ctx context.Context) error {
	if err := s.creds.Delete(); err != nil {
		s.log.WithError(err).Warn("failed to remove persisted credentials")
	}
	s.mu.RLock()
	subject := s.identity.Subject
	s.mu.RUnlock()
	s.becomeAnonymous()
	s.log.WithField("subject", subject).Info("logged out")
	return nil
}

// RefreshPermissions refetches the authoritative permission set and clears
// the decision cache so cached answers cannot outlive a grant change.
func (s *Store) RefreshPermissions(ctx context.Context) error {
	s.mu.RLock()
	state := s.state
	userID := s.userID
	s.mu.RUnlock()
	if state != StateAuthenticated {
		return ErrNotAuthenticated
	}

	raw, err := s.permissionsFromAuthority(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to refresh permissions: %w", err)
	}
	effective, unknown := rbac.SetFromStrings(raw)
	if len(unknown) > 0 {
		s.log.WithField("permissions", unknown).Debug("ignoring unknown permissions from authority")
	}

	s.mu.Lock()
	s.effective = effective
	s.cache.Clear()
	s.mu.Unlock()
	return nil
}

// HandleUnauthorized is wired to the backend client's 401 hook. The
// authority has rejected the credential, so the session cannot continue.
func (s *Store) HandleUnauthorized() {
	s.log.Warn("credential rejected by authority, dropping session")
	if err := s.creds.Delete(); err != nil {
		s.log.WithError(err).Warn("failed to remove persisted credentials")
	}
	s.becomeAnonymous()
}

// State returns the current lifecycle phase
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity implements rbac.Session. It reports no identity outside the
// Authenticated state and treats an expired credential as absent.
func (s *Store) Identity() (auth.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return auth.Identity{}, false
	}
	if s.identity.Expired(time.Now()) {
		return auth.Identity{}, false
	}
	return s.identity, true
}

// EffectivePermissions implements rbac.Session
func (s *Store) EffectivePermissions() rbac.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effective.Clone()
}

// Cache implements rbac.Session
func (s *Store) Cache() *rbac.Cache {
	return s.cache
}

// Epoch implements rbac.Session
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// StoreDecision implements rbac.Session. Writes carrying a stale epoch are
// discarded; they belong to a session that no longer exists.
func (s *Store) StoreDecision(epoch uint64, p rbac.Permission, allowed bool, source rbac.Source) {
	s.mu.RLock()
	current := s.epoch
	s.mu.RUnlock()
	if epoch != current {
		return
	}
	s.cache.Set(p, allowed, source)
}

// Token implements client.TokenProvider
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// UserID returns the backend id of the authenticated user, or 0 when it is
// unknown (restored sessions identify by token only).
func (s *Store) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// discardCredential removes the persisted credential, logging on failure
func (s *Store) discardCredential() {
	if err := s.creds.Delete(); err != nil {
		s.log.WithError(err).Warn("failed to remove persisted credentials")
	}
}

func (s *Store) becomeAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = auth.Identity{}
	s.userID = 0
	s.effective = rbac.Set{}
	s.epoch++
	s.cache.Clear()
	s.setStateLocked(StateAnonymous)
}

// fetchPermissions asks the authority for the effective set, best effort.
// Failure is tolerated: the resolver falls back to remote checks and the
// local policy table.
func (s *Store) fetchPermissions(ctx context.Context, userID int64) rbac.Set {
	raw, err := s.permissionsFromAuthority(ctx, userID)
	if err != nil {
		s.log.WithError(err).Debug("failed to fetch effective permissions")
		return rbac.Set{}
	}
	effective, unknown := rbac.SetFromStrings(raw)
	if len(unknown) > 0 {
		s.log.WithField("permissions", unknown).Debug("ignoring unknown permissions from authority")
	}
	return effective
}

func (s *Store) permissionsFromAuthority(ctx context.Context, userID int64) ([]string, error) {
	if userID > 0 {
		return s.authority.EffectivePermissions(ctx, userID)
	}
	return s.authority.SelfPermissions(ctx)
}

// setStateLocked assumes s.mu is held
func (s *Store) setStateLocked(next State) {
	if s.state == next {
		return
	}
	s.state = next
	s.metrics.SessionTransitionsTotal.WithLabelValues(string(next)).Inc()
}
