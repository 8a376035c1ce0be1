package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrade(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"XF-AU", "XF"},
		{"AU/UNC", "AU"},
		{"UNC+", "UNC"},
		{"VF-XF", "VF"},
		{"UNC-", "UNC"},
		{"", ""},
		{"G", "G"},
		{"  XF/AU  ", "XF"},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, Grade(test.input), "input: %q", test.input)
	}
}

func TestMoney(t *testing.T) {
	cases := []struct {
		input    string
		expected float64
	}{
		{"1 250,50 руб.", 1250.50},
		{"1 250 руб.", 1250},
		{"12,500", 12500},
		{"350 руб.", 350},
		{"Ставка: 1200,00", 1200},
		{"7.50", 7.5},
		{"no price here", 0},
		{"", 0},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, Money(test.input), "input: %q", test.input)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "5 копеек 1924", CollapseWhitespace("  5 копеек\n\t 1924 "))
}
