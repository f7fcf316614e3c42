package infer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	sessionNumRe  = regexp.MustCompile(`(?i)\bSession\s+\d+\b`)
	slugSessionRe = regexp.MustCompile(`(?i)-session-\d+/?$`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)

	// Recording artifacts stripped from inferred campaign names:
	// "Session 44", "Session 03a", "Part 2", "Character Creation", "Sfx",
	// and standalone digit runs with an optional trailing letter.
	badCampaignRe = regexp.MustCompile(`(?i)\b(session\s*\d+[a-z]?|part\s*\d+|character\s+creation|sfx|\d+[a-z]?)\b`)
)

// A cleaned "campaign" that is exactly one of these is noise, not a name.
var badCampaignExact = map[string]bool{
	"session": true,
	"part":    true,
}

const separatorCutset = " -–—:"

// InferCampaign derives a campaign name from page signals, strips recording
// artifacts from it, and normalizes it through the alias map. Returns ""
// when no usable name can be derived.
//
// Inference tries, in order:
//  1. a tag of the form "Campaign (Group)" scoped to the inferred group
//  2. a URL slug of the form "<campaign>-session-123"
//  3. the title with its "Session NNN" marker removed
func (e *Engine) InferCampaign(tags []string, title, group, system, rawURL string) string {
	raw := inferCampaignName(tags, title, group, system, rawURL)
	cleaned := cleanCampaignName(raw)
	return e.normalizeCampaignName(cleaned)
}

func inferCampaignName(tags []string, title, group, system, rawURL string) string {
	systemLow := strings.ToLower(system)
	groupLow := strings.ToLower(group)

	// 1) Group-scoped tag pattern: "Campaign Name (Group Name)"
	if group != "" {
		for _, tag := range tags {
			if !tagParensContain(tag, groupLow) {
				continue
			}

			remainder := strings.TrimSpace(parenRe.ReplaceAllString(tag, ""))
			remainderLow := strings.ToLower(remainder)

			// Don't treat "System (Group)" as a campaign
			if systemLow != "" && remainderLow == systemLow {
				continue
			}
			if remainderLow == groupLow {
				continue
			}

			if remainder != "" {
				return remainder
			}
		}
	}

	// 2) URL slug
	if fromURL := campaignFromURL(rawURL); fromURL != "" {
		if systemLow == "" || strings.ToLower(fromURL) != systemLow {
			return fromURL
		}
	}

	// 3) Title fallback: strip "Session NNN". A title that reduces to the
	// system name is rejected outright rather than falling through; the
	// title is the last resort and there is nothing left to try.
	if title != "" {
		candidate := sessionNumRe.ReplaceAllString(title, "")
		candidate = multiSpaceRe.ReplaceAllString(candidate, " ")
		candidate = strings.Trim(strings.TrimSpace(candidate), separatorCutset)
		if candidate != "" {
			if systemLow != "" && strings.ToLower(candidate) == systemLow {
				return ""
			}
			return candidate
		}
	}

	return ""
}

func tagParensContain(tag, wantLow string) bool {
	if wantLow == "" {
		return false
	}
	for _, m := range parenRe.FindAllStringSubmatch(tag, -1) {
		if strings.ToLower(strings.TrimSpace(m[1])) == wantLow {
			return true
		}
	}
	return false
}

// campaignFromURL derives a campaign name from a URL slug like
// ".../giantslayer-session-16/" -> "Giantslayer".
func campaignFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return ""
	}

	segments := strings.Split(path, "/")
	slug := strings.ToLower(strings.TrimSpace(segments[len(segments)-1]))
	slug = strings.Trim(slugSessionRe.ReplaceAllString(slug, ""), "-")
	if slug == "" {
		return ""
	}

	caser := cases.Title(language.English)
	var words []string
	for _, w := range strings.Split(slug, "-") {
		if w != "" {
			words = append(words, caser.String(w))
		}
	}
	if len(words) == 0 {
		return ""
	}

	return strings.Join(words, " ")
}

// cleanCampaignName removes recording artifacts:
//
//	"Kingmaker Session 44 2"         -> "Kingmaker"
//	"Session 00 Character Creation"  -> "" (absent)
//
// Cleaned names that are empty, reserved words, or shorter than three
// characters usually mean everything useful was stripped.
func cleanCampaignName(name string) string {
	if name == "" {
		return ""
	}

	cleaned := badCampaignRe.ReplaceAllString(name, "")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(strings.TrimSpace(cleaned), separatorCutset)

	if cleaned == "" {
		return ""
	}

	if badCampaignExact[strings.ToLower(cleaned)] {
		return ""
	}

	if utf8.RuneCountInString(cleaned) < 3 {
		return ""
	}

	return cleaned
}

// normalizeCampaignName substitutes the canonical name when the alias map
// has an entry for the cleaned name; otherwise the name passes through.
func (e *Engine) normalizeCampaignName(name string) string {
	if name == "" {
		return ""
	}
	if canonical, ok := e.aliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}
