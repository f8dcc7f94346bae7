package summarize

import "testing"

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"prefix", "Summary: The paper shows X.", "The paper shows X."},
		{"long prefix", "summary of the paper:\n\nWe study Y.", "We study Y."},
		{"blank runs", "One.\n\n  \n\nTwo.", "One.\n\nTwo."},
		{"untouched", "Plain text.", "Plain text."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatSummary(tc.in); got != tc.want {
				t.Errorf("FormatSummary(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short.", 100, "short."},
		{"First sentence. Second sentence.", 20, "First sentence."},
		{"no stops here at all", 8, "no stops"},
		{"anything", 0, ""},
		{"naïve", 3, "na"},
		{"日本語", 4, "日"},
	}
	for _, tc := range tests {
		if got := TruncateText(tc.in, tc.max); got != tc.want {
			t.Errorf("TruncateText(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
