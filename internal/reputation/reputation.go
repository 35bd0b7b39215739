// Package reputation classifies email domains against static
// disposable-mailbox and free-provider lists. Lookups are constant-time
// against sets embedded at build time; the tables are read-only after
// construction and safe for concurrent use without locking.
package reputation

import (
	"bufio"
	_ "embed"
	"strings"

	wildcard "github.com/IGLOU-EU/go-wildcard/v2"
)

//go:embed data/disposable_domains.txt
var disposableRaw string

//go:embed data/free_providers.txt
var freeProvidersRaw string

// Lookup answers domain reputation queries. Unknown domains are neither
// disposable nor free: absence from the lists is not evidence of
// legitimacy, it just yields false.
type Lookup struct {
	disposable         map[string]struct{}
	disposablePatterns []string
	freeProviders      map[string]struct{}
}

// NewLookup builds the lookup from the embedded domain lists.
func NewLookup() *Lookup {
	l := &Lookup{
		disposable:    make(map[string]struct{}),
		freeProviders: make(map[string]struct{}),
	}
	for _, entry := range parseList(disposableRaw) {
		if strings.ContainsRune(entry, '*') {
			l.disposablePatterns = append(l.disposablePatterns, entry)
			continue
		}
		l.disposable[entry] = struct{}{}
	}
	for _, entry := range parseList(freeProvidersRaw) {
		l.freeProviders[entry] = struct{}{}
	}
	return l
}

// IsDisposable reports whether domain is a known throwaway-mailbox
// provider. Wildcard entries cover providers that rotate subdomains.
func (l *Lookup) IsDisposable(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	if _, ok := l.disposable[domain]; ok {
		return true
	}
	for _, pattern := range l.disposablePatterns {
		if wildcard.Match(pattern, domain) {
			return true
		}
	}
	return false
}

// IsFreeProvider reports whether domain belongs to a known free mail
// provider.
func (l *Lookup) IsFreeProvider(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	_, ok := l.freeProviders[domain]
	return ok
}

func parseList(raw string) []string {
	var entries []string
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}
