// pkg/cleaner/dates.go
package cleaner

import (
	"strings"
	"time"

	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// joinDateLayouts are tried in order. ISO forms come first, then US
// month-first numeric forms, then forms with a month name. Day-first numeric
// strings are deliberately absent: "13-01-2022" does not parse.
var joinDateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// ParseJoinDate parses a free-text join date. Leading and trailing whitespace
// is ignored. ok is false when no layout matches.
func ParseJoinDate(raw string) (date model.Date, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Date{}, false
	}

	for _, layout := range joinDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), true
		}
	}
	return model.Date{}, false
}
