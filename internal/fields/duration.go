package fields

import (
	"strconv"
	"strings"
	"time"
)

// DurationString renders the span between start and end as "1d 2h 3m 4s".
// Zero units are omitted, so one day and four seconds is "1d 4s" and equal
// times give "0s". The sign of the span is ignored.
func DurationString(start, end time.Time) string {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)

	units := []struct {
		suffix string
		size   int64
	}{
		{"d", 86400},
		{"h", 3600},
		{"m", 60},
	}

	var parts []string
	for _, u := range units {
		n := total / u.size
		total %= u.size
		if n > 0 {
			parts = append(parts, strconv.FormatInt(n, 10)+u.suffix)
		}
	}
	if total > 0 || len(parts) == 0 {
		parts = append(parts, strconv.FormatInt(total, 10)+"s")
	}
	return strings.Join(parts, " ")
}
