package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zootrail/zootrail/internal/client/api"
	"github.com/zootrail/zootrail/internal/client/models"
	"github.com/zootrail/zootrail/internal/logging"
)

// State names the session lifecycle phases.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateHydrating     State = "hydrating"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateRefreshing    State = "refreshing"
)

// ErrInvalidGrant is returned by Login when the grant is missing its token,
// user, or expiry horizon.
var ErrInvalidGrant = errors.New("grant missing token, user, or expiry")

// refreshCallTimeout bounds the scheduled refresh network call.
const refreshCallTimeout = 15 * time.Second

// Snapshot is the read-only projection of the manager's state. Components
// read session state through snapshots, never through the store directly.
type Snapshot struct {
	State    State
	Hydrated bool
	Session  *models.Session
}

// AuthAPI is the slice of the remote client the manager needs.
type AuthAPI interface {
	Refresh(ctx context.Context) (*models.Grant, *api.CallResult, error)
	Logout(ctx context.Context) error
}

// Manager orchestrates the authenticated session: hydration at startup,
// login, logout, and a single scheduled refresh per session lifetime.
//
// A failed refresh is always destructive: the local session is dropped and
// state resolves to anonymous. It is never retried, because a stale invalid
// token must not linger.
type Manager struct {
	store  Store
	client AuthAPI
	log    logging.Logger
	margin time.Duration
	now    func() time.Time

	mu       sync.Mutex
	state    State
	hydrated bool
	sess     *models.Session
	timer    *time.Timer
	timerGen int
	subs     map[int]func(Snapshot)
	nextSub  int
	closed   bool

	unsubStore func()
}

// NewManager wires the manager to its store and API client. margin is how
// long before expiry the refresh fires; non-positive values refresh at the
// expiry instant.
func NewManager(store Store, client AuthAPI, log logging.Logger, margin time.Duration) *Manager {
	m := &Manager{
		store:  store,
		client: client,
		log:    log,
		margin: margin,
		now:    time.Now,
		state:  StateUninitialized,
		subs:   make(map[int]func(Snapshot)),
	}
	m.unsubStore = store.Subscribe(m.onStoreChange)
	return m
}

// Hydrate loads the persisted session once at startup. It always completes
// by marking the manager hydrated, so consumers can tell "not determined
// yet" from "confirmed anonymous".
func (m *Manager) Hydrate(ctx context.Context) error {
	m.mu.Lock()
	if m.hydrated {
		m.mu.Unlock()
		return nil
	}
	m.state = StateHydrating
	m.mu.Unlock()

	sess, err := m.store.Read(ctx)
	if err != nil {
		m.log.Warn(ctx, "session hydration read failed", "error", err)
		sess = nil
	}

	if sess != nil && !sess.Valid(m.now()) {
		// The record is stale; drop it so other contexts converge too.
		if err := m.store.Clear(ctx); err != nil {
			m.log.Warn(ctx, "clearing expired session failed", "error", err)
		}
		sess = nil
	}

	m.mu.Lock()
	if sess != nil {
		m.sess = sess
		m.state = StateAuthenticated
		m.scheduleRefreshLocked()
	} else {
		m.sess = nil
		m.state = StateAnonymous
	}
	m.hydrated = true
	m.notifyLocked()
	m.mu.Unlock()

	m.log.Info(ctx, "session hydrated", "state", string(m.Current().State))
	return nil
}

// Login persists the granted session and schedules its refresh. Repeated
// calls with the same grant are idempotent.
func (m *Manager) Login(ctx context.Context, grant models.Grant) error {
	if grant.Token == "" || grant.User.ID == "" || grant.ExpiresIn <= 0 {
		return ErrInvalidGrant
	}

	sess := models.NewSession(grant, m.now())
	m.mu.Lock()
	if sess.User.Email == "" && m.sess != nil {
		sess.User.Email = m.sess.User.Email
	}
	m.mu.Unlock()

	if err := m.store.Write(ctx, sess); err != nil {
		return err
	}

	m.mu.Lock()
	m.sess = sess
	m.state = StateAuthenticated
	m.scheduleRefreshLocked()
	m.notifyLocked()
	m.mu.Unlock()
	return nil
}

// Logout invalidates the token server-side on a best-effort basis, then
// clears the store and resolves to anonymous. The pending refresh timer is
// always cancelled, even when clearing fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	hadToken := m.sess != nil && m.sess.Token != ""
	m.cancelTimerLocked()
	m.mu.Unlock()

	if hadToken {
		if err := m.client.Logout(ctx); err != nil {
			m.log.Warn(ctx, "server-side logout failed, continuing locally", "error", err)
		}
	}

	clearErr := m.store.Clear(ctx)
	if clearErr != nil {
		m.log.Error(ctx, "clearing session store failed", "error", clearErr)
	}

	m.mu.Lock()
	m.sess = nil
	m.state = StateAnonymous
	m.notifyLocked()
	m.mu.Unlock()

	return clearErr
}

// Token returns the current bearer token, or "" when anonymous. It makes
// the manager the api.TokenSource for outbound calls.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return ""
	}
	return m.sess.Token
}

// Current returns a snapshot of the manager's state.
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a state-change callback and returns its cancel func.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Close cancels the refresh timer and detaches from the store. In-flight
// refresh completions are ignored afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.cancelTimerLocked()
	m.mu.Unlock()

	if m.unsubStore != nil {
		m.unsubStore()
	}
	return nil
}

// scheduleRefreshLocked arms the single refresh timer for the current
// session, replacing any previously pending one. Fires immediately when the
// margin-adjusted deadline is already past.
func (m *Manager) scheduleRefreshLocked() {
	m.cancelTimerLocked()
	if m.sess == nil {
		return
	}

	m.timerGen++
	gen := m.timerGen

	delay := m.sess.ExpiresAt.Add(-m.margin).Sub(m.now())
	if delay < 0 {
		delay = 0
	}
	m.timer = time.AfterFunc(delay, func() { m.refresh(gen) })
}

func (m *Manager) cancelTimerLocked() {
	m.timerGen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// refresh runs when the timer fires. gen guards against completions that
// belong to a session that was logged out or replaced in the meantime.
func (m *Manager) refresh(gen int) {
	m.mu.Lock()
	if m.closed || gen != m.timerGen || m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	m.state = StateRefreshing
	m.notifyLocked()
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), refreshCallTimeout)
	defer cancel()

	grant, res, err := m.client.Refresh(ctx)

	m.mu.Lock()
	if m.closed || gen != m.timerGen {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err == nil && grant != nil {
		if loginErr := m.Login(ctx, *grant); loginErr == nil {
			m.log.Info(ctx, "session refreshed", "user_id", grant.User.ID)
			return
		} else {
			m.log.Warn(ctx, "persisting refreshed session failed", "error", loginErr)
		}
	} else if err != nil {
		m.log.Warn(ctx, "session refresh failed", "error", err)
	} else {
		status := 0
		if res != nil {
			status = res.Status
		}
		m.log.Info(ctx, "session refresh rejected, dropping session", "status", status)
	}

	// Any refresh failure resolves deterministically to anonymous. No error
	// surfaces to the user beyond now being logged out.
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error(ctx, "clearing session after failed refresh", "error", err)
	}

	m.mu.Lock()
	if !m.closed && gen == m.timerGen {
		m.cancelTimerLocked()
		m.sess = nil
		m.state = StateAnonymous
		m.notifyLocked()
	}
	m.mu.Unlock()
}

// onStoreChange reconciles with external mutations of the shared store,
// e.g. a logout performed by another process. No network round trip is
// needed to converge.
func (m *Manager) onStoreChange() {
	m.mu.Lock()
	ready := m.hydrated && !m.closed
	current := m.sess
	m.mu.Unlock()
	if !ready {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stored, err := m.store.Read(ctx)
	if err != nil {
		m.log.Warn(ctx, "reading session after store change failed", "error", err)
		return
	}

	switch {
	case stored == nil && current != nil:
		m.mu.Lock()
		m.cancelTimerLocked()
		m.sess = nil
		m.state = StateAnonymous
		m.notifyLocked()
		m.mu.Unlock()
		m.log.Info(ctx, "session cleared externally, now anonymous")

	case stored != nil && (current == nil || stored.Token != current.Token):
		if !stored.Valid(m.now()) {
			return
		}
		m.mu.Lock()
		m.sess = stored
		m.state = StateAuthenticated
		m.scheduleRefreshLocked()
		m.notifyLocked()
		m.mu.Unlock()
		m.log.Info(ctx, "session adopted from external change", "user_id", stored.User.ID)
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	var sess *models.Session
	if m.sess != nil {
		copied := *m.sess
		sess = &copied
	}
	return Snapshot{State: m.state, Hydrated: m.hydrated, Session: sess}
}

func (m *Manager) notifyLocked() {
	snap := m.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	go func() {
		for _, fn := range fns {
			fn(snap)
		}
	}()
}
