package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		days []int
		want string
	}{
		{"all days", []int{1, 2, 3, 4, 5, 6, 7}, "daily"},
		{"unsorted", []int{5, 1, 3}, "1,3,5"},
		{"duplicates", []int{2, 2, 5}, "2,5"},
		{"out of range dropped", []int{0, 3, 8}, "3"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.days))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  []int
	}{
		{"daily", "daily", []int{1, 2, 3, 4, 5, 6, 7}},
		{"daily any case", " Daily ", []int{1, 2, 3, 4, 5, 6, 7}},
		{"list", "1,3,5", []int{1, 3, 5}},
		{"spaces", " 6 , 7 ", []int{6, 7}},
		{"malformed entries dropped", "1,x,9,-2,4", []int{1, 4}},
		{"empty", "", []int{}},
		{"garbage", "mon,tue", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.token).Days())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Every non-empty subset of the week.
	for mask := 1; mask < 1<<7; mask++ {
		var days []int
		for d := 1; d <= 7; d++ {
			if mask&(1<<(d-1)) != 0 {
				days = append(days, d)
			}
		}
		want := NewSet(days...)
		got := Decode(Encode(days))
		require.Truef(t, want.Equal(got), "round trip of %v gave %v", days, got.Days())
	}
}

func TestIsDueOnTuesdayFriday(t *testing.T) {
	for d := 1; d <= 7; d++ {
		want := d == 2 || d == 5
		assert.Equalf(t, want, IsDueOn("2,5", d), "weekday %d", d)
	}
}

func TestIsDueOnEmptyToken(t *testing.T) {
	for d := 1; d <= 7; d++ {
		assert.False(t, IsDueOn("", d))
	}
}

func TestIsDueAt(t *testing.T) {
	// 2026-01-18 is a Sunday.
	sunday := time.Date(2026, 1, 18, 9, 0, 0, 0, time.UTC)
	assert.True(t, IsDueAt("7", sunday))
	assert.False(t, IsDueAt("1,2,3,4,5", sunday))
	assert.True(t, IsDueAt("1", sunday.AddDate(0, 0, 1)))
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, ISOWeekday(time.Monday))
	assert.Equal(t, 6, ISOWeekday(time.Saturday))
	assert.Equal(t, 7, ISOWeekday(time.Sunday))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"daily", "Daily"},
		{"1,2,3,4,5,6,7", "Daily"},
		{"1,2,3,4,5", "Weekdays"},
		{"6,7", "Weekend"},
		{"1,3,5", "Mon, Wed, Fri"},
		{"7,2", "Tue, Sun"},
		{"", "Never"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.token))
		})
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		input   string
		want    []int
		wantErr bool
	}{
		{input: "daily", want: []int{1, 2, 3, 4, 5, 6, 7}},
		{input: "", want: []int{1, 2, 3, 4, 5, 6, 7}},
		{input: "weekdays", want: []int{1, 2, 3, 4, 5}},
		{input: "Weekend", want: []int{6, 7}},
		{input: "fri,mon,wed", want: []int{1, 3, 5}},
		{input: "tuesday, 5", want: []int{2, 5}},
		{input: "mon,funday", wantErr: true},
		{input: "8", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDays(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
