package probe

import (
	"regexp"
	"strings"
)

// Extraction is best-effort pattern matching over raw markup: each rule
// runs independently, the first rule producing a non-empty value wins,
// and no match leaves the field empty.
type extractRule struct {
	name    string
	pattern *regexp.Regexp
	// refine turns the raw capture into the final value, returning ""
	// to reject generic boilerplate matches.
	refine func(string) string
}

var telegramNameRules = []extractRule{
	{
		name:    "og_title",
		pattern: regexp.MustCompile(`<meta property="og:title" content="([^"]+)">`),
		refine: func(raw string) string {
			if strings.Contains(raw, "Join group chat") {
				return ""
			}
			if strings.Contains(raw, "Telegram: Contact") {
				name := strings.TrimSpace(strings.Replace(raw, "Telegram: Contact", "", 1))
				if strings.HasPrefix(name, "@") {
					return ""
				}
				return name
			}
			return strings.TrimSpace(raw)
		},
	},
	{
		name:    "page_title",
		pattern: regexp.MustCompile(`<div class="tgme_page_title"[^>]*>([^<]+)</div>`),
		refine: func(raw string) string {
			return strings.TrimSpace(raw)
		},
	},
}

var telegramAvatarRule = extractRule{
	name:    "page_photo",
	pattern: regexp.MustCompile(`<img class="tgme_page_photo_image" src="([^"]+)"`),
	refine: func(raw string) string {
		return raw
	},
}

func (r extractRule) apply(body string) string {
	match := r.pattern.FindStringSubmatch(body)
	if match == nil {
		return ""
	}
	return r.refine(match[1])
}

func extractTelegramName(body string) string {
	for _, rule := range telegramNameRules {
		if name := rule.apply(body); name != "" {
			return name
		}
	}
	return ""
}

func extractTelegramAvatar(body string) string {
	return telegramAvatarRule.apply(body)
}
