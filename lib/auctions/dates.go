package auctions

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a plain civil date, the normalized form every site's lot
// closing date is reduced to.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String renders the ISO calendar date, e.g. "2011-09-29".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseDate is the inverse of Date.String. An empty string parses to
// the zero Date, matching how an unknown date is stored.
func ParseDate(s string) (Date, error) {
	if strings.TrimSpace(s) == "" {
		return Date{}, nil
	}
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("expected yyyy-MM-dd, got %q", s)
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 {
		return Date{}, fmt.Errorf("expected yyyy-MM-dd, got %q", s)
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// parseDottedDate parses "29.09.2011".
func parseDottedDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("expected dd.MM.yyyy, got %q", s)
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 {
		return Date{}, fmt.Errorf("expected dd.MM.yyyy, got %q", s)
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// parseDashedDate parses "05-12-07" or "05-12-2007". Two digit years
// land in the 1900s first; any parsed year before 1960 is then rolled
// forward a century. This is a heuristic, it holds as long as the site
// never lists pre-1960 closing dates through this path.
func parseDashedDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("expected dd-MM-yy, got %q", s)
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 {
		return Date{}, fmt.Errorf("expected dd-MM-yy, got %q", s)
	}
	if len(parts[2]) <= 2 {
		year += 1900
	}
	if year < 1960 {
		year += 100
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// russianMonths maps the lowercase 3-letter prefix of a Russian month
// name (any grammatical case) to its month number.
var russianMonths = map[string]time.Month{
	"янв": time.January,
	"фев": time.February,
	"мар": time.March,
	"апр": time.April,
	"май": time.May,
	"мая": time.May,
	"июн": time.June,
	"июл": time.July,
	"авг": time.August,
	"сен": time.September,
	"окт": time.October,
	"ноя": time.November,
	"дек": time.December,
}

func monthFromRussianName(s string) (time.Month, bool) {
	runes := []rune(strings.ToLower(strings.TrimSpace(s)))
	if len(runes) < 3 {
		return 0, false
	}
	month, ok := russianMonths[string(runes[:3])]
	return month, ok
}

// parseRussianDayMonth parses "19 Январь" into a date within the given
// year.
func parseRussianDayMonth(s string, year int) (Date, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return Date{}, fmt.Errorf("expected day and month name, got %q", s)
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return Date{}, fmt.Errorf("expected day and month name, got %q", s)
	}
	month, ok := monthFromRussianName(fields[1])
	if !ok {
		return Date{}, fmt.Errorf("unknown month name in %q", s)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}
