package tiny

import "time"

// TimeLayout is the textual timestamp format used by upstream change
// feeds and registration dates ("DD/MM/YYYY HH:MM:SS").
const TimeLayout = "02/01/2006 15:04:05"

// FormatTime renders a timestamp in the upstream wire format.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime parses an upstream timestamp. A bare date without the time
// component is accepted too, since older records omit it.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("02/01/2006", s)
}
