package dashboard

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"nutridash/internal/core"
	"nutridash/internal/log"
	"nutridash/internal/store"
)

// ErrAccessDenied reports that the viewer cannot be served: no
// profile row exists for the id, or the store is unreachable. The
// HTTP layer renders it as the denied state.
var ErrAccessDenied = errors.New("dashboard: access denied")

// mealFetchLimit caps how many recent rows one refresh pulls; enough
// to cover a full month of logging.
const mealFetchLimit = 100

// sessionIdleTTL bounds how long an untouched session stays in the
// registry before eviction.
const sessionIdleTTL = time.Hour

// Service owns the dashboard sessions and the store ports they read
// from. A session enters the registry only after its first successful
// refresh, so requests for unknown ids cannot grow it; registered
// sessions idle past the TTL are evicted. Pushed meal inserts are
// dispatched to the registered session for that user and dropped when
// nobody is viewing it.
type Service struct {
	profiles store.ProfileStore
	meals    store.MealStore
	mode     core.PeriodMode
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewService(profiles store.ProfileStore, meals store.MealStore, mode core.PeriodMode, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if !mode.IsValid() {
		mode = core.Monthly
	}
	return &Service{
		profiles: profiles,
		meals:    meals,
		mode:     mode,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Session returns the registered session for viewerID, or a fresh
// unregistered one. Registration happens inside the first successful
// Refresh; until then the session is private to the caller.
func (s *Service) Session(viewerID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[viewerID]; ok {
		sess.touch(s.now())
		return sess
	}
	return newSession(s, viewerID)
}

// register adds a session after a successful refresh and sweeps out
// sessions idle past the TTL, keeping the registry bounded by the set
// of recently served viewers.
func (s *Service) register(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-sessionIdleTTL)
	for id, old := range s.sessions {
		if old.lastActive().Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sess.viewerID] = sess
}

// HandleMealInserted is the push-channel entry point: it normalizes
// the raw row and merges it into the session currently viewing that
// user. Inserts for users without a registered session are dropped;
// so are duplicates and records dated outside the active period.
func (s *Service) HandleMealInserted(userID string, record core.RawRecord) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("Dropping meal insert with no live session", log.FieldUserID, userID)
		return
	}

	entry := core.NormalizeMeal(record)
	if sess.MergeEntry(entry) {
		s.logger.Info("Merged pushed meal into live view",
			log.FieldUserID, userID,
			log.FieldMealID, entry.ID,
			log.FieldMealLabel, entry.Label)
	} else {
		s.logger.Debug("Ignored pushed meal (duplicate or out of period)",
			log.FieldUserID, userID,
			log.FieldMealID, entry.ID,
			log.FieldMealDate, entry.Date)
	}
}
