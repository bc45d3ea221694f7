package rag

import (
	"regexp"
	"strings"
)

// Phrases that signal the user explicitly wants outside information.
var externalCues = []string{
	"search",
	"search for",
	"find more",
	"find out more",
	"find more about",
	"look up",
	"look it up",
	"google",
	"on the web",
	"on the internet",
	"online",
	"internet",
	"browse",
	"based on the literature",
	"literature",
	"latest",
	"news",
	"current events",
	"papers",
	"research papers",
	"studies",
	"journals",
	"arxiv",
	"reddit",
	"twitter",
	"social media",
	"what are people saying",
	"external sources",
	"supplement",
}

var externalCuePattern = func() *regexp.Regexp {
	quoted := make([]string, len(externalCues))
	for i, c := range externalCues {
		quoted[i] = regexp.QuoteMeta(c)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}()

// DetectExternalRequest reports whether text contains an explicit request for
// external or supplementary information. Matching is lexical and whole-word.
func DetectExternalRequest(text string) bool {
	return externalCuePattern.MatchString(strings.ToLower(text))
}
