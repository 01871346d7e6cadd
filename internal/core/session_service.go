package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/viewmodel"
)

// DefaultIdleTimeout applies when NewSessionService gets a non-positive timeout.
const DefaultIdleTimeout = 15 * time.Minute

// Session holds the live pages of one signed-in user. Pages start on first use.
type Session struct {
	UID string

	deps   viewmodel.Deps
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	holds       int
	lastUsed    time.Time
	dashboard   *viewmodel.Dashboard
	budget      *viewmodel.BudgetPage
	ingredients *viewmodel.IngredientsPage
	meals       *viewmodel.MealsPage
}

func newSession(deps viewmodel.Deps, uid string, now time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{UID: uid, deps: deps, ctx: ctx, cancel: cancel, lastUsed: now}
}

// Dashboard returns the session's dashboard, starting it if needed.
func (s *Session) Dashboard() *viewmodel.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dashboard == nil {
		s.dashboard = viewmodel.NewDashboard(s.deps, s.UID)
		s.dashboard.Start(s.ctx)
	}
	return s.dashboard
}

// Budget returns the session's budget page, starting it if needed.
func (s *Session) Budget() *viewmodel.BudgetPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.budget == nil {
		s.budget = viewmodel.NewBudgetPage(s.deps, s.UID)
		s.budget.Start(s.ctx)
	}
	return s.budget
}

// Ingredients returns the session's ingredients page, starting it if needed.
func (s *Session) Ingredients() *viewmodel.IngredientsPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ingredients == nil {
		s.ingredients = viewmodel.NewIngredientsPage(s.deps, s.UID)
		s.ingredients.Start(s.ctx)
	}
	return s.ingredients
}

// Meals returns the session's meals page, starting it if needed.
func (s *Session) Meals() *viewmodel.MealsPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meals == nil {
		s.meals = viewmodel.NewMealsPage(s.deps, s.UID)
		s.meals.Start(s.ctx)
	}
	return s.meals
}

// Hold keeps the session from idle eviction until the returned func is called.
func (s *Session) Hold() func() {
	s.mu.Lock()
	s.holds++
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.holds--
			s.mu.Unlock()
		})
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed), s.holds > 0
}

// Close stops every started page. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	dashboard, budget, ingredients, meals := s.dashboard, s.budget, s.ingredients, s.meals
	s.mu.Unlock()

	if dashboard != nil {
		dashboard.Close()
	}
	if budget != nil {
		budget.Close()
	}
	if ingredients != nil {
		ingredients.Close()
	}
	if meals != nil {
		meals.Close()
	}
	s.cancel()
}

// sessionService implements the SessionService interface.
type sessionService struct {
	deps   viewmodel.Deps
	idle   time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSessionService creates the registry and starts its idle janitor.
func NewSessionService(deps viewmodel.Deps, idleTimeout time.Duration, logger *zap.Logger) SessionService {
	return newSessionService(deps, idleTimeout, logger, time.Now)
}

func newSessionService(deps viewmodel.Deps, idleTimeout time.Duration, logger *zap.Logger, now func() time.Time) *sessionService {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	s := &sessionService{
		deps:     deps,
		idle:     idleTimeout,
		logger:   logger.Named("sessions"),
		now:      now,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Session returns the live session for uid, creating it on first use.
func (s *sessionService) Session(uid string) (*Session, error) {
	if uid == "" {
		return nil, apperrors.ErrNotSignedIn
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		return nil, ErrSessionsClosed
	}
	sess, ok := s.sessions[uid]
	if !ok {
		sess = newSession(s.deps, uid, now)
		s.sessions[uid] = sess
		s.logger.Info("Session opened", zap.String("uid", uid))
		return sess, nil
	}
	sess.touch(now)
	return sess, nil
}

// Len returns the number of open sessions.
func (s *sessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *sessionService) janitor() {
	defer close(s.done)
	interval := s.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictIdle(s.now())
		}
	}
}

// evictIdle closes sessions unused for longer than the idle timeout and
// returns how many were closed. Held sessions are kept.
func (s *sessionService) evictIdle(now time.Time) int {
	var evicted []*Session
	s.mu.Lock()
	for uid, sess := range s.sessions {
		idle, held := sess.idleSince(now)
		if held || idle <= s.idle {
			continue
		}
		delete(s.sessions, uid)
		evicted = append(evicted, sess)
	}
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.Close()
		s.logger.Info("Session evicted", zap.String("uid", sess.UID))
	}
	return len(evicted)
}

// Shutdown stops the janitor and closes every session.
func (s *sessionService) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done

		s.mu.Lock()
		sessions := s.sessions
		s.sessions = nil
		s.mu.Unlock()

		for _, sess := range sessions {
			sess.Close()
		}
		s.logger.Info("Sessions closed", zap.Int("count", len(sessions)))
	})
}
