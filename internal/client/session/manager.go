// Package session owns the Data API bearer token: whether the cached one is
// still usable, how a new one is obtained, and where it is kept.
//
// The server does not report token lifetimes, so the expiry is a local
// estimate: the clock time at which the refresh started plus Lifetime.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
	"github.com/dmitrijs2005/fmdata/internal/client/models"
	"github.com/dmitrijs2005/fmdata/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/fmdata/internal/logging"
	"github.com/dmitrijs2005/fmdata/internal/metrics"
)

// DefaultLifetime matches the Data API's idle session timeout.
const DefaultLifetime = 15 * time.Minute

// SessionClient is the part of client.Client the manager needs.
type SessionClient interface {
	CreateSession(ctx context.Context, credential string) (token, code string, err error)
	DeleteSession(ctx context.Context, token string) (code string, err error)
}

// RefreshResult describes a newly obtained session.
type RefreshResult struct {
	Token     string
	ExpiresAt time.Time
	Code      string
}

// Manager is safe for concurrent use. Concurrent refreshes with the same
// credential share one network call.
type Manager struct {
	client   SessionClient
	store    sessions.Store
	clock    clockwork.Clock
	lifetime time.Duration
	logger   logging.Logger
	metrics  *metrics.Recorder

	group singleflight.Group
}

type Option func(*Manager)

func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLifetime overrides DefaultLifetime. Non-positive values are ignored.
func WithLifetime(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lifetime = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Manager) { m.metrics = r }
}

// NewManager builds a manager. A nil store means an in-memory one.
func NewManager(c SessionClient, store sessions.Store, opts ...Option) *Manager {
	if store == nil {
		store = sessions.NewMemoryStore()
	}
	m := &Manager{
		client:   c,
		store:    store,
		clock:    clockwork.NewRealClock(),
		lifetime: DefaultLifetime,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lifetime returns the session lifetime the manager assumes.
func (m *Manager) Lifetime() time.Duration { return m.lifetime }

// IsActiveToken reports whether a token is stored and its expiry is
// strictly in the future. It never touches the network. A store that
// cannot be read counts as no token.
func (m *Manager) IsActiveToken(ctx context.Context) bool {
	sess, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "session store read failed", "error", err)
		return false
	}
	return sess.ActiveAt(m.clock.Now())
}

// Current returns the stored session, active or not.
func (m *Manager) Current(ctx context.Context) (models.Session, error) {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// RefreshToken obtains a new token with credential and stores it. Callers
// that arrive while a refresh with the same credential is in flight wait
// for it and share its result; each waiter still honours its own ctx.
func (m *Manager) RefreshToken(ctx context.Context, credential string) (RefreshResult, error) {
	if strings.TrimSpace(credential) == "" {
		m.metrics.ObserveRefresh(metrics.OutcomeConfig)
		return RefreshResult{}, &client.Error{
			Op:   client.OpCreateSession,
			Kind: client.ErrConfigMissing,
			Err:  errors.New("credential is not set"),
		}
	}

	ch := m.group.DoChan(refreshKey(credential), func() (any, error) {
		// The shared call must not die with whichever caller started it.
		return m.refresh(context.WithoutCancel(ctx), credential)
	})

	select {
	case <-ctx.Done():
		return RefreshResult{}, &client.Error{Op: client.OpCreateSession, Kind: client.ErrNetwork, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return RefreshResult{}, res.Err
		}
		return res.Val.(RefreshResult), nil
	}
}

func (m *Manager) refresh(ctx context.Context, credential string) (RefreshResult, error) {
	startedAt := m.clock.Now()

	token, code, err := m.client.CreateSession(ctx, credential)
	if err != nil {
		m.metrics.ObserveRefresh(refreshOutcome(err))
		m.logger.Warn(ctx, "session refresh failed", "error", err)
		return RefreshResult{}, err
	}

	res := RefreshResult{Token: token, ExpiresAt: startedAt.Add(m.lifetime), Code: code}
	written, err := m.store.Save(ctx, models.Session{Token: token, ExpiresAt: res.ExpiresAt})
	if err != nil {
		m.metrics.ObserveRefresh(metrics.OutcomeError)
		m.logger.Error(ctx, "session store write failed", "error", err)
		return RefreshResult{}, fmt.Errorf("store session: %w", err)
	}

	m.metrics.ObserveRefresh(metrics.OutcomeOK)
	m.logger.Info(ctx, "session refreshed", "expires_at", res.ExpiresAt, "code", code, "stored", written)
	return res, nil
}

// Token returns the active token, refreshing first when there is none.
func (m *Manager) Token(ctx context.Context, credential string) (string, error) {
	sess, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "session store read failed", "error", err)
	} else if sess.ActiveAt(m.clock.Now()) {
		return sess.Token, nil
	}

	res, err := m.RefreshToken(ctx, credential)
	if err != nil {
		return "", err
	}
	return res.Token, nil
}

// Logout closes the server-side session, if any, and clears the store. The
// store is cleared even when the server call fails; the error is still
// returned.
func (m *Manager) Logout(ctx context.Context) (string, error) {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if sess.Token == "" {
		return "", nil
	}

	code, callErr := m.client.DeleteSession(ctx, sess.Token)
	if err := m.store.Clear(ctx); err != nil {
		return code, errors.Join(callErr, fmt.Errorf("clear session: %w", err))
	}
	if callErr != nil {
		m.logger.Warn(ctx, "server-side logout failed", "error", callErr)
		return code, callErr
	}
	m.logger.Info(ctx, "session closed", "code", code)
	return code, nil
}

// refreshKey groups refreshes by credential without keeping the secret
// itself as a map key.
func refreshKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

func refreshOutcome(err error) string {
	switch client.KindOf(err) {
	case client.ErrNetwork:
		return metrics.OutcomeNetwork
	case client.ErrMalformedResponse:
		return metrics.OutcomeMalformed
	case client.ErrAPI:
		return metrics.OutcomeAPI
	case client.ErrConfigMissing:
		return metrics.OutcomeConfig
	default:
		return metrics.OutcomeError
	}
}
