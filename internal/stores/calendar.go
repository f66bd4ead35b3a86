package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/logger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/snapshot"
)

const CalendarStoreName = "calendar"

// DefaultUpcomingCount is how many events GetUpcomingEvents returns when asked for none.
const DefaultUpcomingCount = 5

// streakWindow is the trailing window consistent-learner counts completion days in.
const streakWindow = 7 * 24 * time.Hour

const dateLayout = "2006-01-02"

var calendarSchema = snapshot.Schema{
	Version:    1,
	Migrations: map[int]snapshot.Migration{0: unwrapState("events")},
}

type CalendarStore struct {
	mu     sync.Mutex
	p      persister
	rec    ledger.Recorder
	opts   options
	loaded bool
	events []models.CalendarEvent
}

func NewCalendarStore(local repository.LocalStore, rec ledger.Recorder, pub ledger.Publisher, opts ...Option) *CalendarStore {
	return &CalendarStore{
		p:    newPersister(CalendarStoreName, models.FieldCalendar, calendarSchema, local, pub),
		rec:  rec,
		opts: newOptions(opts),
	}
}

// decodeEvents decodes each element on its own so that one bad record does
// not lose the rest. Events without a start date are dropped too.
func decodeEvents(log *logger.Logger, raws []json.RawMessage) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(raws))
	for i, raw := range raws {
		var e models.CalendarEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			log.Warn("skipping malformed calendar event #%d: %v", i, err)
			continue
		}
		if e.StartDate.IsZero() {
			log.Warn("skipping calendar event %q without start date", e.ID)
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *CalendarStore) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.events = nil
	var raws []json.RawMessage
	if s.p.load(ctx, &raws) {
		s.events = decodeEvents(s.p.log(ctx), raws)
	}
}

func (s *CalendarStore) commit(ctx context.Context) []models.CalendarEvent {
	s.p.save(ctx, s.events)
	return append([]models.CalendarEvent{}, s.events...)
}

func (s *CalendarStore) indexOf(id string) int {
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// AddEvent creates an incomplete event. Title and start date are required.
func (s *CalendarStore) AddEvent(ctx context.Context, in models.CalendarEventInput) (*models.CalendarEvent, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errors.NewValidationError("title", "cannot be empty")
	}
	if in.StartDate == nil || in.StartDate.IsZero() {
		return nil, errors.NewValidationError("startDate", "is required")
	}

	s.mu.Lock()
	s.ensureLoaded(ctx)
	e := models.CalendarEvent{
		ID:           s.opts.newID(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		StartDate:    *in.StartDate,
		ReminderTime: in.ReminderTime,
	}
	s.events = append(s.events, e)
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return &e, nil
}

// UpdateEvent returns nil, nil when the event does not exist.
func (s *CalendarStore) UpdateEvent(ctx context.Context, id string, update models.CalendarEventUpdate) (*models.CalendarEvent, error) {
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, errors.NewValidationError("title", "cannot be empty")
	}
	if update.StartDate != nil && update.StartDate.IsZero() {
		return nil, errors.NewValidationError("startDate", "is required")
	}

	s.mu.Lock()
	s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, nil
	}
	s.events[i] = update.Apply(s.events[i])
	e := s.events[i]
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return &e, nil
}

func (s *CalendarStore) DeleteEvent(ctx context.Context, id string) bool {
	s.mu.Lock()
	s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.events = append(s.events[:i:i], s.events[i+1:]...)
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return true
}

// MarkEventCompleted sets the completion flag. Completing an event moves
// consistent-learner to the number of distinct days with a completed event
// in the trailing seven days.
func (s *CalendarStore) MarkEventCompleted(ctx context.Context, id string, completed bool) *models.CalendarEvent {
	s.mu.Lock()
	s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.events[i].IsCompleted = completed
	e := s.events[i]
	if completed {
		days := s.completedDays(s.opts.now())
		s.p.log(ctx).Debug("%d distinct completion days in the last week", days)
		s.rec.AdvanceAchievement(ctx, catalog.ConsistentLearner, days)
	}
	remote := s.commit(ctx)
	s.mu.Unlock()

	s.p.push(ctx, remote)
	return &e
}

// completedDays counts distinct UTC dates of completed events whose start
// falls within [now-7d, now]. Must be called with s.mu held.
func (s *CalendarStore) completedDays(now time.Time) int {
	from := now.Add(-streakWindow)
	days := map[string]struct{}{}
	for _, e := range s.events {
		if !e.IsCompleted || e.StartDate.Before(from) || e.StartDate.After(now) {
			continue
		}
		days[e.StartDate.UTC().Format(dateLayout)] = struct{}{}
	}
	return len(days)
}

func (s *CalendarStore) Events(ctx context.Context) []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	return append([]models.CalendarEvent{}, s.events...)
}

func (s *CalendarStore) GetEvent(ctx context.Context, id string) *models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	if i := s.indexOf(id); i >= 0 {
		e := s.events[i]
		return &e
	}
	return nil
}

// GetEventsByDate returns events whose start falls on date (YYYY-MM-DD, UTC).
func (s *CalendarStore) GetEventsByDate(ctx context.Context, date string) ([]models.CalendarEvent, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, errors.NewValidationError("date", "must be formatted as YYYY-MM-DD")
	}
	want := day.Format(dateLayout)

	out := []models.CalendarEvent{}
	for _, e := range s.Events(ctx) {
		if e.StartDate.UTC().Format(dateLayout) == want {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetUpcomingEvents returns up to count incomplete events starting now or
// later, soonest first. A count below one means DefaultUpcomingCount.
func (s *CalendarStore) GetUpcomingEvents(ctx context.Context, count int) []models.CalendarEvent {
	if count < 1 {
		count = DefaultUpcomingCount
	}
	now := s.opts.now()

	out := []models.CalendarEvent{}
	for _, e := range s.Events(ctx) {
		if !e.IsCompleted && !e.StartDate.Before(now) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	if len(out) > count {
		out = out[:count]
	}
	return out
}

func (s *CalendarStore) Field() string { return models.FieldCalendar }

func (s *CalendarStore) Snapshot(ctx context.Context) (json.RawMessage, error) {
	return json.Marshal(s.Events(ctx))
}

// Replace skips malformed remote events the same way a local load does.
func (s *CalendarStore) Replace(ctx context.Context, raw json.RawMessage) error {
	var raws []json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &raws); err != nil {
			return fmt.Errorf("decode remote calendar: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = decodeEvents(s.p.log(ctx), raws)
	s.loaded = true
	s.p.save(ctx, s.events)
	return nil
}

func (s *CalendarStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.ensureLoaded(ctx)
}

func (s *CalendarStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.events = nil
}
