package rag

import (
	"fmt"
	"strings"

	"rag-chatbot-be/pkg/search"
)

// Tool is one of the closed set of capabilities a plan step may invoke.
type Tool string

const (
	ToolRetrieve Tool = "retrieve"
	ToolWeb      Tool = "web"
	ToolAcademic Tool = "academic"
	ToolSocial   Tool = "social"
)

// Canonical order, used when expanding and listing tools.
var allTools = []Tool{ToolRetrieve, ToolWeb, ToolAcademic, ToolSocial}

func ParseTool(s string) (Tool, error) {
	switch Tool(strings.ToLower(strings.TrimSpace(s))) {
	case ToolRetrieve:
		return ToolRetrieve, nil
	case ToolWeb:
		return ToolWeb, nil
	case ToolAcademic:
		return ToolAcademic, nil
	case ToolSocial:
		return ToolSocial, nil
	default:
		return "", fmt.Errorf("unknown tool %q", s)
	}
}

// SearchMode maps a web variant to its search mode. ok is false for retrieve.
func (t Tool) SearchMode() (mode search.Mode, ok bool) {
	switch t {
	case ToolWeb:
		return search.ModeWeb, true
	case ToolAcademic:
		return search.ModeAcademic, true
	case ToolSocial:
		return search.ModeSocial, true
	default:
		return "", false
	}
}

func (t Tool) IsWeb() bool {
	_, ok := t.SearchMode()
	return ok
}

func (t Tool) bit() ToolSet {
	switch t {
	case ToolRetrieve:
		return 1 << 0
	case ToolWeb:
		return 1 << 1
	case ToolAcademic:
		return 1 << 2
	case ToolSocial:
		return 1 << 3
	default:
		return 0
	}
}

// ToolSet is the set of tools enabled for a turn.
type ToolSet uint8

func NewToolSet(tools ...Tool) ToolSet {
	var s ToolSet
	for _, t := range tools {
		s |= t.bit()
	}
	return s
}

func (s ToolSet) Has(t Tool) bool { return t.bit() != 0 && s&t.bit() != 0 }

func (s ToolSet) Empty() bool { return s == 0 }

func (s ToolSet) Tools() []Tool {
	var out []Tool
	for _, t := range allTools {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s ToolSet) WebTools() []Tool {
	var out []Tool
	for _, t := range allTools {
		if t.IsWeb() && s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s ToolSet) Names() []string {
	tools := s.Tools()
	out := make([]string, len(tools))
	for i, t := range tools {
		out[i] = string(t)
	}
	return out
}

// Step is one (sub-query, tool) pair of a plan.
type Step struct {
	Query string `json:"topic"`
	Tool  Tool   `json:"tool"`
}

type Plan []Step

// UsesRetrieval reports whether any step reads the document index.
func (p Plan) UsesRetrieval() bool {
	for _, s := range p {
		if s.Tool == ToolRetrieve {
			return true
		}
	}
	return false
}

func (p Plan) UsesWeb() bool {
	for _, s := range p {
		if s.Tool.IsWeb() {
			return true
		}
	}
	return false
}
