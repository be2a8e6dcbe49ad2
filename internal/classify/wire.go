package classify

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// WireReason explains why a wire decision was reached.
type WireReason string

// Decision reasons, in rule-evaluation order.
const (
	ReasonOwnSourceDomain   WireReason = "own_source_domain"
	ReasonWireByline        WireReason = "wire_byline"
	ReasonCopyright         WireReason = "copyright"
	ReasonWeakURLPlusSignal WireReason = "weak_url_plus_content"
	ReasonNone              WireReason = "none"
)

// WireDecision is the wire classifier output.
type WireDecision struct {
	IsWire   bool
	Reason   WireReason
	Evidence string
}

// WireService describes one syndication source's recognizable signals.
type WireService struct {
	Name       string   `yaml:"name"`
	Domains    []string `yaml:"domains"`
	Bylines    []string `yaml:"bylines"`
	Copyrights []string `yaml:"copyrights"`
}

// defaultWireServices covers the national agencies seen most often in local
// outlet syndication.
var defaultWireServices = []WireService{
	{
		Name:       "Associated Press",
		Domains:    []string{"apnews.com", "ap.org"},
		Bylines:    []string{"by ap", "by the associated press", "by associated press", "associated press", "(ap)"},
		Copyrights: []string{"associated press. all rights reserved", "copyright ap", "© associated press"},
	},
	{
		Name:       "Reuters",
		Domains:    []string{"reuters.com"},
		Bylines:    []string{"by reuters", "reuters —", "reuters -", "(reuters)"},
		Copyrights: []string{"thomson reuters", "© reuters", "reuters. all rights reserved"},
	},
	{
		Name:       "Agence France-Presse",
		Domains:    []string{"afp.com"},
		Bylines:    []string{"by afp", "(afp)", "agence france-presse"},
		Copyrights: []string{"© afp", "afp. all rights reserved"},
	},
	{
		Name:       "CNN Wire",
		Domains:    []string{"cnn.com"},
		Bylines:    []string{"cnn wire", "by cnn newsource"},
		Copyrights: []string{"cable news network", "© cnn"},
	},
}

// defaultWeakURLPatterns are path fragments that hint at syndication but are
// deliberately insufficient evidence on their own.
var defaultWeakURLPatterns = []string{
	"/ap-",
	"/ap/",
	"/wire/",
	"/wires/",
	"/national/",
	"/world/",
	"/nation-world/",
}

// searchWindow bounds the head/tail content scans. Wire attributions and
// rights notices conventionally sit at the very start or end of an article.
const searchWindow = 150

// WireClassifier detects syndicated wire-service content after extraction.
type WireClassifier struct {
	services    []WireService
	weakURLPats []string
}

// NewWireClassifier builds a classifier with the default signature sets.
func NewWireClassifier() *WireClassifier {
	return &WireClassifier{
		services:    defaultWireServices,
		weakURLPats: defaultWeakURLPatterns,
	}
}

// NewWireClassifierFromFile loads a signature-set override from YAML.
func NewWireClassifierFromFile(path string) (*WireClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wire signatures: %w", err)
	}
	var doc struct {
		Services        []WireService `yaml:"services"`
		WeakURLPatterns []string      `yaml:"weak_url_patterns"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse wire signatures: %w", err)
	}
	if len(doc.Services) == 0 {
		return nil, fmt.Errorf("wire signature file %s defines no services", path)
	}
	c := &WireClassifier{services: doc.Services, weakURLPats: doc.WeakURLPatterns}
	if len(c.weakURLPats) == 0 {
		c.weakURLPats = defaultWeakURLPatterns
	}
	return c, nil
}

// Classify evaluates the ordered rule set; the first hit wins.
func (c *WireClassifier) Classify(rawURL, content string) WireDecision {
	lowered := strings.ToLower(content)
	host := hostOf(rawURL)

	// Rule 1: the wire service publishing on its own site is the original
	// source, not syndication.
	for _, svc := range c.services {
		for _, domain := range svc.Domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return WireDecision{IsWire: false, Reason: ReasonOwnSourceDomain, Evidence: domain}
			}
		}
	}

	head := lowered[:min(len(lowered), searchWindow)]
	tail := lowered[max(0, len(lowered)-searchWindow):]

	// Rule 2: byline attribution in the opening window.
	if svc, sig := c.matchSignature(head, bylines); svc != "" {
		return WireDecision{IsWire: true, Reason: ReasonWireByline, Evidence: fmt.Sprintf("%s: %q", svc, sig)}
	}

	// Rule 3: rights notice in the closing window.
	if svc, sig := c.matchSignature(tail, copyrights); svc != "" {
		return WireDecision{IsWire: true, Reason: ReasonCopyright, Evidence: fmt.Sprintf("%s: %q", svc, sig)}
	}

	// Rule 4: a weak URL pattern needs corroborating content evidence from
	// anywhere in the document.
	if pat := c.matchWeakURL(rawURL); pat != "" {
		if svc, sig := c.matchSignature(lowered, bylines); svc != "" {
			return WireDecision{IsWire: true, Reason: ReasonWeakURLPlusSignal, Evidence: fmt.Sprintf("%s + %s: %q", pat, svc, sig)}
		}
		if svc, sig := c.matchSignature(lowered, copyrights); svc != "" {
			return WireDecision{IsWire: true, Reason: ReasonWeakURLPlusSignal, Evidence: fmt.Sprintf("%s + %s: %q", pat, svc, sig)}
		}
	}

	return WireDecision{IsWire: false, Reason: ReasonNone}
}

type signatureKind int

const (
	bylines signatureKind = iota
	copyrights
)

func (c *WireClassifier) matchSignature(text string, kind signatureKind) (service, signature string) {
	for _, svc := range c.services {
		sigs := svc.Bylines
		if kind == copyrights {
			sigs = svc.Copyrights
		}
		for _, sig := range sigs {
			if sig == "" {
				continue
			}
			if strings.Contains(text, strings.ToLower(sig)) {
				return svc.Name, sig
			}
		}
	}
	return "", ""
}

func (c *WireClassifier) matchWeakURL(rawURL string) string {
	lowered := strings.ToLower(rawURL)
	for _, pat := range c.weakURLPats {
		if strings.Contains(lowered, pat) {
			return pat
		}
	}
	return ""
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
