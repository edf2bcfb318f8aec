package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 10, hour, min, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{name: "valid window", start: at(9, 0), end: at(10, 0), wantErr: false},
		{name: "start equals end", start: at(9, 0), end: at(9, 0), wantErr: true},
		{name: "start after end", start: at(10, 0), end: at(9, 0), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := New(tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, iv.Start)
			assert.Equal(t, tt.end, iv.End)
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{
			name: "disjoint",
			a:    Interval{Start: at(9, 0), End: at(10, 0)},
			b:    Interval{Start: at(11, 0), End: at(12, 0)},
			want: false,
		},
		{
			name: "touching endpoints do not overlap",
			a:    Interval{Start: at(9, 0), End: at(10, 0)},
			b:    Interval{Start: at(10, 0), End: at(11, 0)},
			want: false,
		},
		{
			name: "partial overlap",
			a:    Interval{Start: at(9, 0), End: at(10, 0)},
			b:    Interval{Start: at(9, 30), End: at(10, 30)},
			want: true,
		},
		{
			name: "containment",
			a:    Interval{Start: at(9, 0), End: at(12, 0)},
			b:    Interval{Start: at(10, 0), End: at(11, 0)},
			want: true,
		},
		{
			name: "identical windows",
			a:    Interval{Start: at(9, 0), End: at(10, 0)},
			b:    Interval{Start: at(9, 0), End: at(10, 0)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestDuration(t *testing.T) {
	iv, err := New(at(9, 0), at(10, 30))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, iv.Duration())
}

func TestDay(t *testing.T) {
	day := Day(time.Date(2024, 1, 10, 15, 42, 7, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), day.Start)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), day.End)
	assert.Equal(t, 24*time.Hour, day.Duration())
}
