package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsLikelyArticle(t *testing.T) {
	t.Parallel()

	c := NewURLClassifier()
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"plain article path", "https://example-herald.com/news/council-votes-on-budget", true},
		{"dated article path", "https://example-herald.com/2026/08/12/school-board-election", true},
		{"gallery segment", "https://example-herald.com/gallery/county-fair-2026", false},
		{"video segment", "https://example-herald.com/video/storm-damage", false},
		{"hyphenated prefix", "https://example-herald.com/video-gallery/storm-damage", false},
		{"hyphenated suffix", "https://example-herald.com/storm-damage-video", false},
		{"tag index", "https://example-herald.com/tag/city-hall", false},
		{"bare domain root", "https://example-herald.com/", false},
		{"malformed url", "http://%zz", false},
		{"missing host", "/news/local-story", false},
		{"segment inside longer path", "https://example-herald.com/news/photos/flooding", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := c.IsLikelyArticle(tc.url); got != tc.want {
				t.Fatalf("IsLikelyArticle(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestURLClassifierSegmentMatchIsNotSubstring(t *testing.T) {
	t.Parallel()

	c := NewURLClassifier()
	// "videography" contains "video" but is not the segment, a prefix with a
	// hyphen, or a suffix with a hyphen.
	if !c.IsLikelyArticle("https://example-herald.com/news/videography-business-opens") {
		t.Fatal("plain substring should not trigger the filter")
	}
}

func TestNewURLClassifierFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	if err := os.WriteFile(path, []byte("- recipes\n- puzzles\n"), 0o600); err != nil {
		t.Fatalf("write patterns: %v", err)
	}

	c, err := NewURLClassifierFromFile(path)
	if err != nil {
		t.Fatalf("NewURLClassifierFromFile() error = %v", err)
	}
	if c.IsLikelyArticle("https://example-herald.com/recipes/apple-pie") {
		t.Fatal("override segment should filter")
	}
	// The override replaces the defaults entirely.
	if !c.IsLikelyArticle("https://example-herald.com/gallery/county-fair") {
		t.Fatal("default segments should not apply after override")
	}
}

func TestNewURLClassifierFromFileRejectsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	if err := os.WriteFile(path, []byte("[]\n"), 0o600); err != nil {
		t.Fatalf("write patterns: %v", err)
	}
	if _, err := NewURLClassifierFromFile(path); err == nil {
		t.Fatal("expected error for empty pattern file")
	}
}
