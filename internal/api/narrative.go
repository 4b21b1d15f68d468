package api

import (
	"regexp"
	"strings"
)

// narrativeSection is one titled block extracted from the generated text.
type narrativeSection struct {
	Title string
	Body  string
}

// sectionTags lists the output tags the narrative prompt asks for, in display
// order, with human-readable titles.
var sectionTags = []struct {
	Tag   string
	Title string
}{
	{"weatherPatterns", "Weather patterns"},
	{"livingCosts", "Living costs"},
	{"healthImpacts", "Health impacts"},
	{"environmentalChanges", "Environmental changes"},
	{"agriculturalEffects", "Agricultural effects"},
	{"locationSpecific", "Location-specific considerations"},
	{"uncertaintyNotes", "Uncertainty"},
}

var sectionRe = map[string]*regexp.Regexp{}

func init() {
	for _, s := range sectionTags {
		sectionRe[s.Tag] = regexp.MustCompile(`(?s)<` + s.Tag + `>(.*?)</` + s.Tag + `>`)
	}
}

// parseNarrativeSections splits generated text into titled sections. Tags the
// model omitted are skipped; text with no tags at all comes back as a single
// untitled section so nothing is lost.
func parseNarrativeSections(text string) []narrativeSection {
	if text == "" {
		return nil
	}

	var sections []narrativeSection
	for _, s := range sectionTags {
		m := sectionRe[s.Tag].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[1])
		if body == "" {
			continue
		}
		sections = append(sections, narrativeSection{Title: s.Title, Body: body})
	}

	if len(sections) == 0 {
		return []narrativeSection{{Body: strings.TrimSpace(text)}}
	}
	return sections
}
