package genai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			in:   `{"action":"RENAME_CLASS"}`,
			want: `{"action":"RENAME_CLASS"}`,
			ok:   true,
		},
		{
			name: "fenced json block",
			in:   "Here you go:\n```json\n{\"title\": \"Photosynthesis\"}\n```\nHope that helps!",
			want: `{"title": "Photosynthesis"}`,
			ok:   true,
		},
		{
			name: "nested objects",
			in:   `prefix {"a": {"b": {"c": 1}}} suffix`,
			want: `{"a": {"b": {"c": 1}}}`,
			ok:   true,
		},
		{
			name: "braces inside strings are ignored",
			in:   `{"note": "use { and } carefully"}`,
			want: `{"note": "use { and } carefully"}`,
			ok:   true,
		},
		{
			name: "escaped quotes inside strings",
			in:   `{"note": "she said \"hi\""}`,
			want: `{"note": "she said \"hi\""}`,
			ok:   true,
		},
		{
			name: "no object at all",
			in:   "plain prose answer",
			ok:   false,
		},
		{
			name: "unbalanced object",
			in:   `{"oops": 1`,
			ok:   false,
		},
		{
			name: "empty input",
			in:   "",
			ok:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSON(tc.in)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}
