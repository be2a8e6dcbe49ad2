package fetch

import (
	"net/http"
	"strings"
	"testing"
)

func TestBlockDetectorStatusCodes(t *testing.T) {
	t.Parallel()

	d := NewBlockDetector(nil)
	for _, code := range []int{http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		if !d.Blocked(code, nil) {
			t.Fatalf("status %d should be treated as blocked", code)
		}
	}
	if d.Blocked(http.StatusOK, []byte("<html><p>regular article text</p></html>")) {
		t.Fatal("clean 200 response should not be blocked")
	}
	if d.Blocked(http.StatusNotFound, []byte("page not found")) {
		t.Fatal("404 without challenge markup should not be blocked")
	}
}

func TestBlockDetectorBodySignatures(t *testing.T) {
	t.Parallel()

	d := NewBlockDetector(nil)
	bodies := []string{
		"<html><title>Attention Required! | Cloudflare</title></html>",
		"<div id='px-captcha'></div>",
		"Please complete the CAPTCHA to continue",
		"Press & Hold to confirm you are a human",
	}
	for _, body := range bodies {
		if !d.Blocked(http.StatusOK, []byte(body)) {
			t.Fatalf("expected challenge body to be detected: %q", body)
		}
	}
}

func TestBlockDetectorExtraSignatures(t *testing.T) {
	t.Parallel()

	d := NewBlockDetector([]string{"  Custom-Wall ", ""})
	if !d.Blocked(http.StatusOK, []byte("<html>custom-wall interstitial</html>")) {
		t.Fatal("extra signature should extend the default set")
	}
}

func TestBlockDetectorScanLimit(t *testing.T) {
	t.Parallel()

	d := NewBlockDetector(nil)
	// The signature sits beyond the 64 KiB scan window.
	body := strings.Repeat("a", blockScanLimit) + "captcha"
	if d.Blocked(http.StatusOK, []byte(body)) {
		t.Fatal("signatures beyond the scan limit should be ignored")
	}
}
