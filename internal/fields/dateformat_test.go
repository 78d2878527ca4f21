package fields

import (
	"errors"
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	at := time.Date(2024, time.March, 5, 14, 7, 9, 123000000, time.UTC)
	midnight := time.Date(2024, time.November, 21, 0, 5, 0, 0, time.FixedZone("", 5*3600+30*60))

	tests := []struct {
		pattern string
		when    time.Time
		want    string
	}{
		{"yyyy-MM-dd", at, "2024-03-05"},
		{"yyyy-MM-dd HH:mm", at, "2024-03-05 14:07"},
		{"yy/M/d", at, "24/3/5"},
		{"MMM d, yyyy", at, "Mar 5, 2024"},
		{"EEEE, MMMM do", at, ""}, // 'o' is unsupported
		{"EEEE, MMMM d 'at' h:mm a", at, "Tuesday, March 5 at 2:07 PM"},
		{"EEE HH:mm:ss.SSS", at, "Tue 14:07:09.123"},
		{"hh:mm aaa", midnight, "12:05 am"},
		{"kk:mm", midnight, "24:05"},
		{"K:mm", midnight, "0:05"},
		{"QQQ yyyy", midnight, "Q4 2024"},
		{"yyyy-MM-dd'T'HH:mmXXX", midnight, "2024-11-21T00:05+05:30"},
		{"HH:mm X", at, "14:07 Z"},
		{"HH:mm xx", at, "14:07 +0000"},
		{"'it''s' yyyy", at, "it's 2024"},
		{"''yyyy''", at, "'2024'"},
		{"T", at, "1709647629123"},
		{"%d.%m.%Y", at, "05.03.2024"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := FormatDate(tt.when, tt.pattern)
			if tt.want == "" {
				if !errors.Is(err, ErrDatePattern) {
					t.Fatalf("FormatDate(%q) error = %v, want ErrDatePattern", tt.pattern, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatDate(%q) error = %v", tt.pattern, err)
			}
			if got != tt.want {
				t.Errorf("FormatDate(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestFormatDate_ProtectedTokens(t *testing.T) {
	for _, pattern := range []string{"YYYY-MM-dd", "yyyy-MM-DD", "bogus"} {
		if _, err := FormatDate(time.Now(), pattern); !errors.Is(err, ErrDatePattern) {
			t.Errorf("FormatDate(%q) error = %v, want ErrDatePattern", pattern, err)
		}
	}
}

func TestDurationString(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		span time.Duration
		want string
	}{
		{"zero", 0, "0s"},
		{"seconds", 42 * time.Second, "42s"},
		{"minutes", 65 * time.Second, "1m 5s"},
		{"hours", 2*time.Hour + 5*time.Second, "2h 5s"},
		{"days", 24 * time.Hour, "1d"},
		{"day and seconds", 24*time.Hour + 4*time.Second, "1d 4s"},
		{"hours and minutes", 3*time.Hour + 20*time.Minute, "3h 20m"},
		{"mixed", 50*time.Hour + 3*time.Minute + 4*time.Second, "2d 2h 3m 4s"},
		{"sub-second", 900 * time.Millisecond, "0s"},
		{"negative", -90 * time.Second, "1m 30s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DurationString(start, start.Add(tt.span)); got != tt.want {
				t.Errorf("DurationString() = %q, want %q", got, tt.want)
			}
		})
	}
}
