package projection

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/routinely/internal/feed"
	"github.com/julianstephens/routinely/internal/models"
)

// View is one rendering of the habit list.
type View struct {
	Habits     []models.Habit
	Options    Options
	Categories []string
	// Total is the number of habits before filtering.
	Total int
}

// Projector recomputes the View whenever the habit collection or the view
// options change.
type Projector struct {
	mu     sync.Mutex
	opts   Options
	habits []models.Habit
	ready  bool
	clock  func() time.Time
	out    *feed.Feed[View]
}

// NewProjector starts with opts. clock supplies "now" in the configured
// location; nil means time.Now.
func NewProjector(opts Options, clock func() time.Time) *Projector {
	if clock == nil {
		clock = time.Now
	}
	return &Projector{opts: opts, clock: clock, out: feed.New[View]()}
}

// Run consumes habit snapshots until ctx is done or the channel closes, then
// ends every subscription.
func (p *Projector) Run(ctx context.Context, habits <-chan []models.Habit) {
	defer p.out.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-habits:
			if !ok {
				return
			}
			p.SetHabits(snap)
		}
	}
}

// SetHabits replaces the collection and publishes a new view.
func (p *Projector) SetHabits(habits []models.Habit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.habits = habits
	p.ready = true
	p.publish()
}

// Options returns the current view options.
func (p *Projector) Options() Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts
}

// SetOptions replaces the view options.
func (p *Projector) SetOptions(opts Options) {
	p.update(func(o Options) Options { return opts })
}

// SelectSort applies Options.SelectSort and returns the resulting options.
func (p *Projector) SelectSort(mode SortMode) Options {
	return p.update(func(o Options) Options { return o.SelectSort(mode) })
}

func (p *Projector) SetFilter(mode FilterMode) Options {
	return p.update(func(o Options) Options { o.Filter = mode; return o })
}

// SetCategory narrows the list to category; empty clears the narrowing.
func (p *Projector) SetCategory(category string) Options {
	return p.update(func(o Options) Options { o.Category = category; return o })
}

// Recompute publishes again with the current clock, e.g. after midnight.
func (p *Projector) Recompute() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publish()
}

// Subscribe delivers the latest view and every later one.
func (p *Projector) Subscribe() (<-chan View, func()) {
	return p.out.Subscribe()
}

// Current returns the latest published view.
func (p *Projector) Current() (View, bool) {
	return p.out.Latest()
}

func (p *Projector) update(fn func(Options) Options) Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = fn(p.opts)
	p.publish()
	return p.opts
}

// publish must be called with p.mu held. Nothing is published before the
// first habit snapshot arrives.
func (p *Projector) publish() {
	if !p.ready {
		return
	}
	p.out.Publish(View{
		Habits:     Project(p.habits, p.opts, p.clock()),
		Options:    p.opts,
		Categories: Categories(p.habits),
		Total:      len(p.habits),
	})
}
