// Package links implements the answer post-processing pipeline: extracting
// markdown links from assistant text, resolving referenced filenames against
// the file inventory, and rewriting the message with source-card anchors.
package links

import (
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/fuzzy"
	"github.com/starford/ansuz/internal/inventory"
)

// linkPattern matches inline markdown links: [text](url). Link text is
// anything up to the closing bracket, the URL anything up to the next ')'.
var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// Link is one extracted (and possibly resolved) markdown link.
type Link struct {
	// Text is the original link text.
	Text string
	// URL is the final reference: a /files/ download URL when resolved,
	// otherwise the original URL unchanged.
	URL string
	// Original is the exact markdown substring as it appears in the message.
	Original string
	// Filename is the display name: the candidate filename up to its
	// first dot.
	Filename string
	// Matched reports whether the link resolved to an inventory entry.
	Matched bool
}

// Extractor extracts links from message text and resolves them against a
// single inventory snapshot per call.
type Extractor struct {
	store    inventory.Provider
	resolver *fuzzy.Resolver
	logger   *slog.Logger
}

// NewExtractor creates an Extractor. A nil resolver selects the default
// scorer; a nil logger selects slog.Default.
func NewExtractor(store inventory.Provider, resolver *fuzzy.Resolver, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = fuzzy.NewResolver(nil, logger)
	}
	return &Extractor{store: store, resolver: resolver, logger: logger}
}

// Extract finds every markdown link in text, in order of appearance
// (duplicates included), skipping http/https URLs. The inventory is scanned
// once for the whole call; each link's candidate filename is percent-decoded
// and resolved against that snapshot. Unresolvable links keep their original
// URL. Zero links yields nil without touching the file system.
func (e *Extractor) Extract(text string) []Link {
	matches := linkPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	inv := e.store.Scan()

	var out []Link
	for _, m := range matches {
		linkText, linkURL := m[1], m[2]

		if strings.HasPrefix(linkURL, "http://") || strings.HasPrefix(linkURL, "https://") {
			continue
		}

		// Candidate filename: last URL path segment, or the link text
		// when the segment is missing or carries no extension.
		candidate := ""
		if linkURL != "" {
			candidate = path.Base(linkURL)
		}
		if candidate == "" || candidate == "." || !strings.Contains(candidate, ".") {
			candidate = linkText
		}
		if decoded, err := url.PathUnescape(candidate); err == nil {
			candidate = decoded
		}

		final := linkURL
		match, ok := e.resolver.Resolve(candidate, inv)
		if ok {
			final = "/files/" + match.Path
		}

		out = append(out, Link{
			Text:     linkText,
			URL:      final,
			Original: m[0],
			Filename: strings.SplitN(candidate, ".", 2)[0],
			Matched:  ok,
		})
	}
	return out
}
