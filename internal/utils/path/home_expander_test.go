package pathutils

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHomeExpanderExpand(t *testing.T) {
	homeDirectory := filepath.FromSlash("/home/tester")

	testCases := []struct {
		name     string
		input    string
		provider HomeDirectoryProvider
		expected string
	}{
		{name: "bare_tilde", input: "~", expected: homeDirectory},
		{name: "tilde_slash", input: "~/projects/app", expected: filepath.Join(homeDirectory, "projects", "app")},
		{name: "other_user_untouched", input: "~other/projects", expected: "~other/projects"},
		{name: "absolute_untouched", input: "/srv/app", expected: "/srv/app"},
		{name: "empty_untouched", input: "", expected: ""},
		{
			name:     "lookup_failure_untouched",
			input:    "~/projects",
			provider: func() (string, error) { return "", errors.New("no home") },
			expected: "~/projects",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			provider := testCase.provider
			if provider == nil {
				provider = func() (string, error) { return homeDirectory, nil }
			}
			expander := NewHomeExpanderWithProvider(provider)
			require.Equal(t, testCase.expected, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderQueriesProviderOnce(t *testing.T) {
	lookups := 0
	expander := NewHomeExpanderWithProvider(func() (string, error) {
		lookups++
		return "/home/tester", nil
	})

	expander.Expand("~/one")
	expander.Expand("~/two")
	require.Equal(t, 1, lookups)
}

func TestNilHomeExpanderReturnsInput(t *testing.T) {
	var expander *HomeExpander
	require.Equal(t, "~/projects", expander.Expand("~/projects"))
}
