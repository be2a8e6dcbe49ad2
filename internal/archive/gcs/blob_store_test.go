package gcs

import (
	"testing"

	"cloud.google.com/go/storage"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, Config{Bucket: "raw-pages"}); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := New(&storage.Client{}, Config{}); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}

func TestObjectKeyNormalization(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"pages/c1.html", "pages/c1.html"},
		{"/pages/c1.html", "pages/c1.html"},
		{"pages/c1.html/", "pages/c1.html"},
		{"  /pages/c1.html  ", "pages/c1.html"},
	}
	for _, tc := range cases {
		got, err := objectKey(tc.in)
		if err != nil {
			t.Fatalf("objectKey(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("objectKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "   ", "///"} {
		if _, err := objectKey(in); err == nil {
			t.Fatalf("objectKey(%q) should fail", in)
		}
	}

	if uri := objectURI("raw-pages", "pages/c1.html"); uri != "gs://raw-pages/pages/c1.html" {
		t.Fatalf("unexpected uri: %s", uri)
	}
}
