package auctions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDashedDateCenturyRollover(t *testing.T) {
	// "12:00:00 05-12-07" closing stamps carry a two digit year; the
	// site only lists lots closed in the 2000s
	date, err := parseDashedDate("05-12-07")
	require.NoError(t, err)
	require.Equal(t, "2007-12-05", date.String())

	date, err = parseDashedDate("31-01-59")
	require.NoError(t, err)
	require.Equal(t, 2059, date.Year)

	// a four digit year passes through untouched
	date, err = parseDashedDate("05-12-2007")
	require.NoError(t, err)
	require.Equal(t, "2007-12-05", date.String())
}

func TestParseDashedDateRejectsGarbage(t *testing.T) {
	_, err := parseDashedDate("05.12.07")
	require.Error(t, err)
	_, err = parseDashedDate("05-13-07")
	require.Error(t, err)
	_, err = parseDashedDate("")
	require.Error(t, err)
}

func TestParseDottedDate(t *testing.T) {
	date, err := parseDottedDate("29.09.2011")
	require.NoError(t, err)
	require.Equal(t, "2011-09-29", date.String())

	_, err = parseDottedDate("29/09/2011")
	require.Error(t, err)
}

func TestRussianMonthNames(t *testing.T) {
	cases := []struct {
		name     string
		expected time.Month
	}{
		{"Январь", time.January},
		{"января", time.January},
		{"Май", time.May},
		{"мая", time.May},
		{"Сентябрь", time.September},
		{"дек", time.December},
	}
	for _, test := range cases {
		month, ok := monthFromRussianName(test.name)
		require.True(t, ok, "name: %q", test.name)
		require.Equal(t, test.expected, month, "name: %q", test.name)
	}

	_, ok := monthFromRussianName("арбуз")
	require.False(t, ok)
}

func TestParseRussianDayMonth(t *testing.T) {
	date, err := parseRussianDayMonth("19 Январь", 2012)
	require.NoError(t, err)
	require.Equal(t, "2012-01-19", date.String())

	_, err = parseRussianDayMonth("Январь", 2012)
	require.Error(t, err)
}

func TestDateZero(t *testing.T) {
	require.True(t, Date{}.IsZero())
	require.False(t, Date{Year: 2011, Month: time.September, Day: 29}.IsZero())
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2011-09-29")
	require.NoError(t, err)
	require.Equal(t, Date{Year: 2011, Month: time.September, Day: 29}, date)
	require.Equal(t, "2011-09-29", date.String())

	date, err = ParseDate("")
	require.NoError(t, err)
	require.True(t, date.IsZero())

	_, err = ParseDate("29.09.2011")
	require.Error(t, err)
}
