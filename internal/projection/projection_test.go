package projection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/routinely/internal/models"
)

// Tuesday.
var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func day(n int) time.Time { return time.Date(2026, 3, n, 8, 0, 0, 0, time.UTC) }

func names(habits []models.Habit) []string {
	out := make([]string, len(habits))
	for i, h := range habits {
		out[i] = h.Name
	}
	return out
}

func ids(habits []models.Habit) []int64 {
	out := make([]int64, len(habits))
	for i, h := range habits {
		out[i] = h.ID
	}
	return out
}

func sample() []models.Habit {
	return []models.Habit{
		{ID: 1, Name: "walk", Schedule: "daily", Category: "Health", CreatedAt: day(1), CurrentStreak: 2},
		{ID: 2, Name: "Éclair diet", Schedule: "2,5", Category: "health", CreatedAt: day(3), CurrentStreak: 5,
			LastCompletedAt: ptr(now.Add(-time.Hour))},
		{ID: 3, Name: "Bass practice", Schedule: "6,7", Category: "Music", CreatedAt: day(2), CurrentStreak: 5},
		{ID: 4, Name: "Read", Schedule: "", CreatedAt: day(3), CurrentStreak: 0,
			LastCompletedAt: ptr(now.AddDate(0, 0, -1))},
	}
}

func TestFilters(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []int64
	}{
		{"today", Options{Filter: Today}, []int64{2, 1}},
		{"all", Options{Filter: All}, []int64{4, 2, 3, 1}},
		{"uncompleted", Options{Filter: Uncompleted}, []int64{4, 3, 1}},
		{"category ignores case", Options{Filter: All, Category: "HEALTH"}, []int64{2, 1}},
		{"category with today", Options{Filter: Today, Category: "music"}, []int64{}},
		{"category with uncompleted", Options{Filter: Uncompleted, Category: "health"}, []int64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Project(sample(), tt.opts, now)))
		})
	}
}

func TestSortByCreationDateTieBreaksOnID(t *testing.T) {
	got := Project(sample(), Options{Filter: All, Sort: ByCreationDate}, now)
	// 2 and 4 share a creation time; the higher id comes first.
	assert.Equal(t, []int64{4, 2, 3, 1}, ids(got))
}

func TestSortByStreak(t *testing.T) {
	got := Project(sample(), Options{Filter: All, Sort: ByStreak}, now)
	// 2 and 3 tie on streak; 2 is newer.
	assert.Equal(t, []int64{2, 3, 1, 4}, ids(got))
}

func TestSortByNameCollates(t *testing.T) {
	asc := Project(sample(), Options{Filter: All, Sort: ByName, NameAscending: true}, now)
	assert.Equal(t, []string{"Bass practice", "Éclair diet", "Read", "walk"}, names(asc))

	desc := Project(sample(), Options{Filter: All, Sort: ByName, NameAscending: false}, now)
	assert.Equal(t, []string{"walk", "Read", "Éclair diet", "Bass practice"}, names(desc))
}

func TestSortByNameTiesKeepIDOrder(t *testing.T) {
	habits := []models.Habit{{ID: 9, Name: "Same"}, {ID: 3, Name: "same"}, {ID: 5, Name: "Same"}}
	for _, asc := range []bool{true, false} {
		got := Project(habits, Options{Filter: All, Sort: ByName, NameAscending: asc}, now)
		assert.Equal(t, []int64{3, 5, 9}, ids(got))
	}
}

func TestSelectSortTwiceFlipsNameOrder(t *testing.T) {
	habits := []models.Habit{{ID: 1, Name: "b"}, {ID: 2, Name: "c"}, {ID: 3, Name: "a"}}
	opts := Options{Filter: All, Sort: ByCreationDate, NameAscending: true}

	opts = opts.SelectSort(ByName)
	assert.Equal(t, []string{"a", "b", "c"}, names(Project(habits, opts, now)))

	opts = opts.SelectSort(ByName)
	assert.Equal(t, []string{"c", "b", "a"}, names(Project(habits, opts, now)))
}

func TestSelectOtherSortKeepsNameDirection(t *testing.T) {
	opts := Options{Sort: ByName, NameAscending: false}
	opts = opts.SelectSort(ByStreak)
	assert.False(t, opts.NameAscending)
	opts = opts.SelectSort(ByName)
	assert.False(t, opts.NameAscending, "coming back to name keeps the stored direction")
	assert.Equal(t, ByName, opts.Sort)
}

func TestProjectIsDeterministicAndPure(t *testing.T) {
	in := sample()
	before := append([]models.Habit(nil), in...)
	opts := Options{Filter: All, Sort: ByStreak}

	first := Project(in, opts, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Project(in, opts, now))
	}
	assert.Equal(t, before, in)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Health", "Music"}, Categories(sample()))
	assert.Empty(t, Categories(nil))
}

func TestParseAndSettingsRoundTrip(t *testing.T) {
	f, err := ParseFilter("Uncompleted")
	require.NoError(t, err)
	assert.Equal(t, Uncompleted, f)
	_, err = ParseFilter("someday")
	assert.Error(t, err)

	s, err := ParseSort("streak")
	require.NoError(t, err)
	assert.Equal(t, ByStreak, s)
	_, err = ParseSort("color")
	assert.Error(t, err)

	opts := Options{Filter: All, Sort: ByName, NameAscending: false, Category: "Music"}
	settings := opts.ApplyTo(models.DefaultSettings())
	assert.Equal(t, "all", settings.DefaultFilter)
	assert.Equal(t, "name", settings.DefaultSort)
	assert.Equal(t, opts, FromSettings(settings))

	bad := models.DefaultSettings()
	bad.DefaultSort = "rainbow"
	assert.Equal(t, ByCreationDate, FromSettings(bad).Sort)
}

func TestProjectorPublishesOnChanges(t *testing.T) {
	p := NewProjector(Options{Filter: All, NameAscending: true}, func() time.Time { return now })
	ch, cancel := p.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		t.Fatalf("view published before habits arrived: %+v", v)
	default:
	}

	habits := make(chan []models.Habit)
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, habits)
		close(done)
	}()

	habits <- sample()
	v := <-ch
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, []int64{4, 2, 3, 1}, ids(v.Habits))
	assert.Equal(t, []string{"Health", "Music"}, v.Categories)

	opts := p.SelectSort(ByName)
	assert.True(t, opts.NameAscending)
	v = <-ch
	assert.Equal(t, "Bass practice", v.Habits[0].Name)

	p.SelectSort(ByName)
	v = <-ch
	assert.Equal(t, "walk", v.Habits[0].Name)

	p.SetFilter(Today)
	v = <-ch
	assert.Equal(t, []int64{1, 2}, ids(v.Habits))

	p.SetCategory("Music")
	v = <-ch
	assert.Empty(t, v.Habits)
	assert.Equal(t, "Music", p.Options().Category)

	stop()
	<-done
	_, open := <-ch
	assert.False(t, open, "Run closes subscriptions on exit")
}

func TestProjectorRecompute(t *testing.T) {
	clock := now
	p := NewProjector(Options{Filter: Today}, func() time.Time { return clock })
	p.SetHabits(sample())
	v, ok := p.Current()
	require.True(t, ok)
	assert.Len(t, v.Habits, 2)

	// Saturday: the weekend habit replaces the Tuesday one.
	clock = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	p.Recompute()
	v, _ = p.Current()
	assert.Equal(t, []int64{3, 1}, ids(v.Habits))
}
