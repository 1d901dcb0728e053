package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventOverlaps(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	// Existing event [10:00, 11:00).
	e := &Event{StartTime: at(10, 0), EndTime: at(11, 0)}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"touching at stored end is not a conflict", at(11, 0), at(12, 0), false},
		{"touching at stored start is not a conflict", at(9, 0), at(10, 0), false},
		{"contained interval conflicts", at(10, 30), at(10, 45), true},
		{"enclosing interval conflicts", at(9, 0), at(12, 0), true},
		{"partial overlap at start conflicts", at(9, 30), at(10, 30), true},
		{"partial overlap at end conflicts", at(10, 30), at(11, 30), true},
		{"disjoint interval does not conflict", at(13, 0), at(14, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Overlaps(tt.start, tt.end))
		})
	}
}
