package fetch

import (
	"bytes"
	"net/http"
	"strings"
)

// blockScanLimit bounds the body scan; challenge pages put their markup well
// inside the first 64 KiB.
const blockScanLimit = 64 * 1024

// defaultBlockSignatures are lowercase body fragments that identify known
// challenge or anti-bot pages. The set is data so pattern coverage can grow
// without touching control flow.
var defaultBlockSignatures = []string{
	"captcha",
	"are you a robot",
	"unusual traffic from your computer",
	"access denied",
	"request blocked",
	"px-captcha",
	"cf-challenge",
	"checking your browser",
	"attention required! | cloudflare",
	"press & hold",
}

// BlockDetector classifies a response as blocked using response-body
// signatures and anomalous status codes. Detection triggers the shared
// backoff window; the system backs off, it does not solve challenges.
type BlockDetector struct {
	signatures [][]byte
}

// NewBlockDetector builds a detector; extra signatures extend the defaults.
func NewBlockDetector(extra []string) *BlockDetector {
	all := make([][]byte, 0, len(defaultBlockSignatures)+len(extra))
	for _, sig := range defaultBlockSignatures {
		all = append(all, []byte(sig))
	}
	for _, sig := range extra {
		sig = strings.ToLower(strings.TrimSpace(sig))
		if sig != "" {
			all = append(all, []byte(sig))
		}
	}
	return &BlockDetector{signatures: all}
}

// Blocked reports whether the response looks like an anti-bot challenge.
func (d *BlockDetector) Blocked(statusCode int, body []byte) bool {
	switch statusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	if len(body) == 0 {
		return false
	}
	if len(body) > blockScanLimit {
		body = body[:blockScanLimit]
	}
	lowered := bytes.ToLower(body)
	for _, sig := range d.signatures {
		if bytes.Contains(lowered, sig) {
			return true
		}
	}
	return false
}
