// Package classify implements the pre-fetch URL filter and the
// post-extraction wire-service detector. Both are stateless decision
// functions over externally configurable pattern sets.
package classify

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultNonArticleSegments lists path segments that mark index, media, and
// utility pages. Order matters only for reporting; first hit wins.
var defaultNonArticleSegments = []string{
	"gallery",
	"galleries",
	"photo",
	"photos",
	"slideshow",
	"video",
	"videos",
	"podcast",
	"category",
	"categories",
	"tag",
	"tags",
	"topic",
	"topics",
	"author",
	"authors",
	"search",
	"newsletter",
	"subscribe",
	"about",
	"contact",
	"events",
	"classifieds",
	"obituaries-index",
}

// URLClassifier decides, before any network cost is spent, whether a
// candidate URL plausibly points at an article.
type URLClassifier struct {
	segments []string
}

// NewURLClassifier builds a classifier with the default pattern set.
func NewURLClassifier() *URLClassifier {
	return &URLClassifier{segments: defaultNonArticleSegments}
}

// NewURLClassifierFromFile loads a pattern-set override from a YAML file
// holding a list of path segments.
func NewURLClassifierFromFile(path string) (*URLClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read url patterns: %w", err)
	}
	var segments []string
	if err := yaml.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parse url patterns: %w", err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("url pattern file %s is empty", path)
	}
	return &URLClassifier{segments: segments}, nil
}

// IsLikelyArticle reports whether the URL passes the non-article filter.
// Malformed URLs are rejected as non-articles rather than erroring; the
// fetch would fail anyway.
func (c *URLClassifier) IsLikelyArticle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	path := strings.ToLower(strings.Trim(u.Path, "/"))
	if path == "" {
		// Bare domain roots are section fronts, not articles.
		return false
	}
	for _, part := range strings.Split(path, "/") {
		for _, seg := range c.segments {
			if part == seg || strings.HasPrefix(part, seg+"-") || strings.HasSuffix(part, "-"+seg) {
				return false
			}
		}
	}
	return true
}
