// Package habits owns the canonical habit collection and its completion log.
//
// Every mutation is written to storage before the in-memory snapshot
// changes, and subscribers receive whole immutable snapshots after each
// committed change. Mutations on different habits run in parallel; those on
// the same habit are serialized.
package habits

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/routinely/internal/feed"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/reminder"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/streak"
	"github.com/julianstephens/routinely/internal/utils"
)

// ErrHabitNotFound is returned for mutations on an id the store does not hold.
var ErrHabitNotFound = errors.New("habit not found")

type recordKey struct {
	habitID int64
	day     string
}

type Store struct {
	provider  storage.Provider
	reminders reminder.Scheduler
	loc       *time.Location
	clock     func() time.Time
	newID     func() string

	// mu is held exclusively by operations that change the set of habits and
	// shared by per-habit mutations.
	mu sync.RWMutex

	// stateMu guards the maps below and orders publishes.
	stateMu sync.Mutex
	habits  map[int64]models.Habit
	records map[recordKey]models.CompletionRecord
	locks   map[int64]*sync.Mutex

	habitFeed      *feed.Feed[[]models.Habit]
	completionFeed *feed.Feed[[]models.CompletionRecord]
}

type Option func(*Store)

// WithLocation sets the zone that defines calendar days. Defaults to Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator replaces the completion record id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(provider storage.Provider, reminders reminder.Scheduler, opts ...Option) *Store {
	s := &Store{
		provider:       provider,
		reminders:      reminders,
		loc:            time.Local,
		clock:          time.Now,
		newID:          uuid.NewString,
		habits:         make(map[int64]models.Habit),
		records:        make(map[recordKey]models.CompletionRecord),
		locks:          make(map[int64]*sync.Mutex),
		habitFeed:      feed.New[[]models.Habit](),
		completionFeed: feed.New[[]models.CompletionRecord](),
	}
	if s.reminders == nil {
		s.reminders = reminder.Log{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the store's location.
func (s *Store) Now() time.Time {
	return s.clock().In(s.loc)
}

// Location returns the zone that defines calendar days.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Load reads everything from storage, starts the current day for every
// habit and publishes the result.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.reload(ctx); err != nil {
		return err
	}
	return s.beginDay(ctx)
}

// Refresh re-reads storage and publishes only when something changed. Long
// running processes call it to see writes made by other processes.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.reload(ctx)
	if err != nil {
		return err
	}
	if changed {
		s.publish()
	}
	return nil
}

func (s *Store) reload(ctx context.Context) (bool, error) {
	habits, err := s.provider.GetAllHabits(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load habits: %w", err)
	}
	records, err := s.provider.GetAllCompletions(ctx, true)
	if err != nil {
		return false, fmt.Errorf("failed to load completions: %w", err)
	}

	nextHabits := make(map[int64]models.Habit, len(habits))
	for _, h := range habits {
		nextHabits[h.ID] = h
	}
	nextRecords := make(map[recordKey]models.CompletionRecord, len(records))
	for _, r := range records {
		nextRecords[recordKey{r.HabitID, r.Day}] = r
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	changed := !reflect.DeepEqual(nextHabits, s.habits) || !reflect.DeepEqual(nextRecords, s.records)
	s.habits = nextHabits
	s.records = nextRecords
	return changed, nil
}

// BeginDay resets progress left over from an earlier day. Streaks are not
// touched; a missed day breaks the streak on the next completion.
func (s *Store) BeginDay(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.beginDay(ctx)
}

// beginDay persists every rolled habit, then applies and publishes them
// together. On error nothing is published and memory keeps the old day.
func (s *Store) beginDay(ctx context.Context) error {
	now := s.Now()
	var rolled []models.Habit
	for _, h := range s.Habits() {
		next := streak.Rollover(h, now)
		if next == h {
			continue
		}
		if err := s.provider.UpdateHabit(ctx, next); err != nil {
			return fmt.Errorf("failed to roll over habit %d: %w", h.ID, err)
		}
		rolled = append(rolled, next)
	}

	s.commit(func() {
		for _, h := range rolled {
			s.habits[h.ID] = h
			logger.Debug("Habit rolled over", "habit_id", h.ID, "day", h.ProgressDay)
		}
	})
	return nil
}

// Create validates draft, stores a new habit and schedules its reminder.
// Invalid drafts fail with *models.InvalidHabitError before storage is
// touched.
func (s *Store) Create(ctx context.Context, draft models.HabitDraft) (models.Habit, error) {
	draft, err := prepare(draft)
	if err != nil {
		return models.Habit{}, err
	}

	now := s.Now()
	h := models.Habit{}.WithDraft(draft)
	h.CreatedAt = now
	h.ProgressDay = utils.DayKey(now)

	s.mu.Lock()
	id, err := s.provider.InsertHabit(ctx, h)
	if err != nil {
		s.mu.Unlock()
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	h.ID = id
	s.commit(func() { s.habits[id] = h })
	s.mu.Unlock()

	logger.Info("Habit created", "habit_id", id, "name", h.Name)
	s.syncReminder(ctx, h)
	return h, nil
}

// Update replaces the editable fields of a habit. Streak fields are left
// alone; progress is only clamped when the target drops below it.
func (s *Store) Update(ctx context.Context, id int64, draft models.HabitDraft) (models.Habit, error) {
	draft, err := prepare(draft)
	if err != nil {
		return models.Habit{}, err
	}

	var updated models.Habit
	err = s.withHabit(id, func(h models.Habit) error {
		updated = h.WithDraft(draft)
		if err := s.provider.UpdateHabit(ctx, updated); err != nil {
			return fmt.Errorf("failed to update habit %d: %w", id, err)
		}
		s.commit(func() { s.habits[id] = updated })
		return nil
	})
	if err != nil {
		return models.Habit{}, err
	}

	s.syncReminder(ctx, updated)
	return updated, nil
}

// Apply runs a progress mutation through the streak rules and persists the
// habit together with any change to the day's completion record.
func (s *Store) Apply(ctx context.Context, id int64, m streak.Mutation) (models.Habit, error) {
	var result models.Habit
	err := s.withHabit(id, func(h models.Habit) error {
		now := s.Now()
		res := streak.Apply(h, m, now)
		key := recordKey{id, utils.DayKey(now)}
		rec := s.recordChange(key, res.Outcome, now)

		if err := s.provider.SaveProgress(ctx, res.Habit, rec); err != nil {
			return fmt.Errorf("failed to save progress for habit %d: %w", id, err)
		}
		s.commit(func() {
			s.habits[id] = res.Habit
			if rec != nil {
				s.records[key] = *rec
			}
		})
		result = res.Habit
		logger.Debug("Habit progress", "habit_id", id, "mutation", m, "outcome", res.Outcome,
			"value", res.Habit.CurrentValue, "streak", res.Habit.CurrentStreak)
		return nil
	})
	return result, err
}

// recordChange returns the completion record to write for outcome, or nil.
// An undone completion is soft-deleted; completing again revives it.
func (s *Store) recordChange(key recordKey, outcome streak.Outcome, now time.Time) *models.CompletionRecord {
	s.stateMu.Lock()
	existing, ok := s.records[key]
	s.stateMu.Unlock()

	switch outcome {
	case streak.Completed:
		rec := existing
		if !ok {
			rec = models.CompletionRecord{ID: s.newID(), HabitID: key.habitID, Day: key.day, CreatedAt: now}
		}
		rec.CompletedAt = now
		rec.UpdatedAt = now
		rec.DeletedAt = nil
		return &rec
	case streak.Undone:
		if !ok || !existing.Active() {
			return nil
		}
		rec := existing
		deleted := now
		rec.UpdatedAt = now
		rec.DeletedAt = &deleted
		return &rec
	}
	return nil
}

// RecordCompletion marks habit id as completed on day (YYYY-MM-DD) in the
// history without touching its counters. Repeated calls are no-ops.
func (s *Store) RecordCompletion(ctx context.Context, id int64, day string) (models.CompletionRecord, error) {
	if _, err := utils.ParseDateInLocation(day, s.loc); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("invalid day %q: %w", day, err)
	}

	var rec models.CompletionRecord
	err := s.withHabit(id, func(models.Habit) error {
		key := recordKey{id, day}
		s.stateMu.Lock()
		existing, ok := s.records[key]
		s.stateMu.Unlock()
		if ok && existing.Active() {
			rec = existing
			return nil
		}

		now := s.Now()
		rec = existing
		if !ok {
			rec = models.CompletionRecord{ID: s.newID(), HabitID: id, Day: day, CreatedAt: now}
		}
		rec.CompletedAt = now
		rec.UpdatedAt = now
		rec.DeletedAt = nil

		if err := s.provider.UpsertCompletion(ctx, rec); err != nil {
			return fmt.Errorf("failed to record completion for habit %d: %w", id, err)
		}
		s.commit(func() { s.records[key] = rec })
		return nil
	})
	return rec, err
}

// Delete removes a habit, its completion records and its reminder. Unknown
// ids are a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	s.stateMu.Lock()
	_, ok := s.habits[id]
	s.stateMu.Unlock()
	if !ok {
		s.mu.Unlock()
		return nil
	}

	if err := s.provider.DeleteHabit(ctx, id); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to delete habit %d: %w", id, err)
	}
	s.commit(func() {
		delete(s.habits, id)
		delete(s.locks, id)
		for key := range s.records {
			if key.habitID == id {
				delete(s.records, key)
			}
		}
	})
	s.mu.Unlock()

	logger.Info("Habit deleted", "habit_id", id)
	if err := s.reminders.Cancel(ctx, id); err != nil {
		logger.Warn("Failed to cancel reminder", "habit_id", id, "error", err)
	}
	return nil
}

// ClearAll wipes every habit and completion record and cancels all
// reminders. Settings are kept.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	if err := s.provider.DeleteAll(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to clear data: %w", err)
	}

	var ids []int64
	s.commit(func() {
		for id := range s.habits {
			ids = append(ids, id)
		}
		s.habits = make(map[int64]models.Habit)
		s.records = make(map[recordKey]models.CompletionRecord)
		s.locks = make(map[int64]*sync.Mutex)
	})
	s.mu.Unlock()

	logger.Info("All habits cleared", "count", len(ids))
	for _, id := range ids {
		if err := s.reminders.Cancel(ctx, id); err != nil {
			logger.Warn("Failed to cancel reminder", "habit_id", id, "error", err)
		}
	}
	return nil
}

// Habit returns one habit from the current snapshot.
func (s *Store) Habit(id int64) (models.Habit, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	h, ok := s.habits[id]
	return h, ok
}

// Habits returns the current habits ordered by id.
func (s *Store) Habits() []models.Habit {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.habitSnapshot()
}

// Completions returns the active completion records ordered by day then
// habit id.
func (s *Store) Completions() []models.CompletionRecord {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.completionSnapshot()
}

// Subscribe delivers the current habits and then a fresh snapshot after
// every committed change. Call cancel to stop delivery.
func (s *Store) Subscribe() (<-chan []models.Habit, func()) {
	s.ensurePublished()
	return s.habitFeed.Subscribe()
}

// SubscribeCompletions is Subscribe for the active completion records.
func (s *Store) SubscribeCompletions() (<-chan []models.CompletionRecord, func()) {
	s.ensurePublished()
	return s.completionFeed.Subscribe()
}

// Close ends every subscription. It does not close the provider.
func (s *Store) Close() {
	s.habitFeed.Close()
	s.completionFeed.Close()
}

func (s *Store) ensurePublished() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if _, ok := s.habitFeed.Latest(); !ok {
		s.habitFeed.Publish(s.habitSnapshot())
		s.completionFeed.Publish(s.completionSnapshot())
	}
}

// withHabit runs fn with habit id under its per-habit lock.
func (s *Store) withHabit(id int64, fn func(models.Habit) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.stateMu.Lock()
	h, ok := s.habits[id]
	lock := s.locks[id]
	if ok && lock == nil {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.stateMu.Unlock()
	if !ok {
		return fmt.Errorf("habit %d: %w", id, ErrHabitNotFound)
	}

	lock.Lock()
	defer lock.Unlock()

	// Re-read under the habit lock; an earlier holder may have changed it.
	h, _ = s.Habit(id)
	return fn(h)
}

// commit applies change to the maps and publishes, atomically with respect
// to other commits.
func (s *Store) commit(change func()) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	change()
	s.habitFeed.Publish(s.habitSnapshot())
	s.completionFeed.Publish(s.completionSnapshot())
}

func (s *Store) publish() {
	s.commit(func() {})
}

func (s *Store) syncReminder(ctx context.Context, h models.Habit) {
	if err := reminder.Sync(ctx, s.reminders, h); err != nil {
		logger.Warn("Failed to update reminder", "habit_id", h.ID, "error", err)
	}
}

func (s *Store) habitSnapshot() []models.Habit {
	out := make([]models.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) completionSnapshot() []models.CompletionRecord {
	out := make([]models.CompletionRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.Active() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].HabitID < out[j].HabitID
	})
	return out
}

// prepare normalizes and validates a draft and canonicalizes its schedule.
func prepare(d models.HabitDraft) (models.HabitDraft, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return d, err
	}
	days := schedule.Decode(d.Schedule).Days()
	if len(days) == 0 {
		return d, &models.InvalidHabitError{Field: "schedule", Reason: fmt.Sprintf("%q selects no weekday", d.Schedule)}
	}
	d.Schedule = schedule.Encode(days)
	return d, nil
}
