package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "contains null byte",
			input: "hel\x00lo",
			want:  "hello",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'a', 0xff, 'b'}),
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePostgresText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{
			name:  "shorter than max",
			input: "abc",
			max:   10,
			want:  "abc",
		},
		{
			name:  "cut at max",
			input: "abcdef",
			max:   3,
			want:  "abc",
		},
		{
			name:  "multibyte runes",
			input: "héllo wörld",
			max:   5,
			want:  "héllo",
		},
		{
			name:  "non-positive max",
			input: "abc",
			max:   0,
			want:  "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateRunes(tt.input, tt.max)
			if got != tt.want {
				t.Fatalf("unexpected truncated value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already collapsed",
			input: "Jeffrey Epstein",
			want:  "Jeffrey Epstein",
		},
		{
			name:  "inner runs and padding",
			input: "  Jeffrey \t\n Epstein  ",
			want:  "Jeffrey Epstein",
		},
		{
			name:  "whitespace only",
			input: " \t ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollapseWhitespace(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected collapsed value: got %q, want %q", got, tt.want)
			}
		})
	}
}
