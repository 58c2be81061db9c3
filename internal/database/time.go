package database

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the textual form used to bind timestamps. Every supported
// dialect accepts it and it sorts lexicographically.
const TimeLayout = "2006-01-02 15:04:05.000000"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Time scans a timestamp column regardless of how the driver surfaces it.
type Time struct{ T time.Time }

var scanLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

// Scan implements sql.Scanner.
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.T = time.Time{}
		return nil
	case time.Time:
		t.T = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("database: cannot scan %T into time", src)
}

func (t *Time) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range scanLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.T = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("database: unrecognized time %q", s)
}
