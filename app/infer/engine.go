package infer

import (
	"regexp"
	"strings"

	"github.com/rpgmp3/rpgstats/app/refdata"
)

var parenRe = regexp.MustCompile(`\(([^)]+)\)`)

// haystack is a searchable text with a score weight. Tags and their
// parenthesized sub-phrases carry full weight because tag text commonly
// follows the "System (Group)" convention; the whole page text is a
// low-confidence signal.
type haystack struct {
	text   string
	weight int
}

// Engine scores known group and system names against page signals and
// resolves campaign names. Reference data is fixed for the lifetime of
// the engine.
type Engine struct {
	groups  []string
	systems []string
	aliases map[string]string
}

func NewEngine(ref *refdata.Store) *Engine {
	return &Engine{
		groups:  ref.Groups,
		systems: ref.Systems,
		aliases: ref.CampaignAliases,
	}
}

func (e *Engine) InferGroup(tags []string, pageText string) string {
	return bestMatch(e.groups, tags, pageText)
}

func (e *Engine) InferSystem(tags []string, pageText string) string {
	return bestMatch(e.systems, tags, pageText)
}

func buildHaystacks(tags []string, pageText string) []haystack {
	var haystacks []haystack

	for _, tag := range tags {
		haystacks = append(haystacks, haystack{text: tag, weight: 3})
		for _, m := range parenRe.FindAllStringSubmatch(tag, -1) {
			haystacks = append(haystacks, haystack{text: m[1], weight: 3})
		}
	}

	if pageText != "" {
		haystacks = append(haystacks, haystack{text: pageText, weight: 1})
	}

	return haystacks
}

// bestMatch returns the known name with the highest score, or "" when no
// name scores above zero. An exact match counts 10 and a substring match
// counts the haystack weight; both accumulate when both hold. Ties keep
// the name listed first in the reference file.
func bestMatch(known []string, tags []string, pageText string) string {
	if len(known) == 0 {
		return ""
	}

	haystacks := buildHaystacks(tags, pageText)

	bestName := ""
	bestScore := 0

	for _, name := range known {
		nameLow := strings.ToLower(name)
		score := 0

		for _, h := range haystacks {
			hLow := strings.ToLower(h.text)
			if hLow == nameLow {
				score += 10
			}
			if strings.Contains(hLow, nameLow) {
				score += h.weight
			}
		}

		if score > bestScore {
			bestScore = score
			bestName = name
		}
	}

	return bestName
}
