package search

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects the domain allow-list applied to a search.
type Mode string

const (
	ModeWeb      Mode = "web"
	ModeAcademic Mode = "academic"
	ModeSocial   Mode = "social"
)

var academicDomains = []string{
	"scholar.google.com",
	"arxiv.org",
	"researchgate.net",
	"sciencedirect.com",
	"ieee.org",
	"ncbi.nlm.nih.gov",
	"academia.edu",
	"ssrn.com",
	"nature.com",
	"science.org",
}

var socialDomains = []string{
	"twitter.com",
	"reddit.com",
	"linkedin.com",
	"quora.com",
	"medium.com",
	"substack.com",
	"discord.com",
	"facebook.com",
	"instagram.com",
}

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeWeb:
		return ModeWeb, nil
	case ModeAcademic:
		return ModeAcademic, nil
	case ModeSocial:
		return ModeSocial, nil
	default:
		return "", fmt.Errorf("unknown search mode %q", s)
	}
}

// IncludeDomains returns a copy of the allow-list for m; nil means unrestricted.
func (m Mode) IncludeDomains() []string {
	switch m {
	case ModeAcademic:
		return append([]string(nil), academicDomains...)
	case ModeSocial:
		return append([]string(nil), socialDomains...)
	default:
		return nil
	}
}

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type Provider interface {
	Search(ctx context.Context, query string, mode Mode) ([]Result, error)
}
