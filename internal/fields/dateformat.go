package fields

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// ErrDatePattern is returned for patterns with unsupported or protected tokens.
var ErrDatePattern = errors.New("invalid date pattern")

// FormatDate renders t with a date-fns style pattern such as "yyyy-MM-dd HH:mm".
// Text in single quotes is literal and '' is a quote. Patterns containing
// '%' are treated as strftime patterns instead.
//
// The week-numbering year (Y) and day-of-year (D) tokens are rejected since
// they are almost always typos for y and d.
func FormatDate(t time.Time, pattern string) (string, error) {
	if strings.ContainsRune(pattern, '%') {
		return strftime.Format(pattern, t), nil
	}

	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\'' {
			end := i + 1
			for end < len(runes) {
				if runes[end] == '\'' {
					if end+1 < len(runes) && runes[end+1] == '\'' {
						b.WriteRune('\'')
						end += 2
						continue
					}
					break
				}
				b.WriteRune(runes[end])
				end++
			}
			if end == i+1 && end < len(runes) {
				// '' outside a quoted run
				b.WriteRune('\'')
			}
			i = end + 1
			continue
		}

		if !isPatternLetter(r) {
			b.WriteRune(r)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}
		s, err := formatToken(t, r, n)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		i += n
	}
	return b.String(), nil
}

func isPatternLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func formatToken(t time.Time, letter rune, n int) (string, error) {
	switch letter {
	case 'y':
		if n == 2 {
			return pad(t.Year()%100, 2), nil
		}
		return pad(t.Year(), n), nil
	case 'Q':
		q := (int(t.Month())-1)/3 + 1
		switch n {
		case 1, 2:
			return pad(q, n), nil
		case 3:
			return "Q" + strconv.Itoa(q), nil
		default:
			return ordinal(q) + " quarter", nil
		}
	case 'M', 'L':
		m := t.Month()
		switch n {
		case 1, 2:
			return pad(int(m), n), nil
		case 3:
			return m.String()[:3], nil
		case 4:
			return m.String(), nil
		default:
			return m.String()[:1], nil
		}
	case 'd':
		return pad(t.Day(), n), nil
	case 'E':
		wd := t.Weekday().String()
		switch n {
		case 1, 2, 3:
			return wd[:3], nil
		case 4:
			return wd, nil
		case 5:
			return wd[:1], nil
		default:
			return wd[:2], nil
		}
	case 'a':
		pm := t.Hour() >= 12
		switch n {
		case 1, 2:
			return pick(pm, "PM", "AM"), nil
		case 3:
			return pick(pm, "pm", "am"), nil
		case 4:
			return pick(pm, "p.m.", "a.m."), nil
		default:
			return pick(pm, "p", "a"), nil
		}
	case 'H':
		return pad(t.Hour(), n), nil
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h, n), nil
	case 'K':
		return pad(t.Hour()%12, n), nil
	case 'k':
		h := t.Hour()
		if h == 0 {
			h = 24
		}
		return pad(h, n), nil
	case 'm':
		return pad(t.Minute(), n), nil
	case 's':
		return pad(t.Second(), n), nil
	case 'S':
		frac := fmt.Sprintf("%09d", t.Nanosecond())
		if n <= 9 {
			return frac[:n], nil
		}
		return frac + strings.Repeat("0", n-9), nil
	case 'X', 'x':
		_, offset := t.Zone()
		if letter == 'X' && offset == 0 {
			return "Z", nil
		}
		return formatOffset(offset, n), nil
	case 'z':
		name, _ := t.Zone()
		return name, nil
	case 't':
		return strconv.FormatInt(t.Unix(), 10), nil
	case 'T':
		return strconv.FormatInt(t.UnixMilli(), 10), nil
	}
	return "", fmt.Errorf("%w: token %q", ErrDatePattern, strings.Repeat(string(letter), n))
}

func formatOffset(offset, n int) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h, m := offset/3600, offset%3600/60
	switch n {
	case 1:
		if m == 0 {
			return sign + pad(h, 2)
		}
		return sign + pad(h, 2) + pad(m, 2)
	case 2:
		return sign + pad(h, 2) + pad(m, 2)
	default:
		return sign + pad(h, 2) + ":" + pad(m, 2)
	}
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	neg := v < 0
	if neg {
		s = s[1:]
	}
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	if neg {
		return "-" + s
	}
	return s
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	}
	return strconv.Itoa(n) + "th"
}
