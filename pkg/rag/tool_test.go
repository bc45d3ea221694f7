package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/pkg/search"
)

func TestParseTool(t *testing.T) {
	for _, name := range []string{"retrieve", "web", "academic", "social", " Web "} {
		_, err := ParseTool(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseTool("calculator")
	assert.Error(t, err)
}

func TestTool_SearchMode(t *testing.T) {
	mode, ok := ToolAcademic.SearchMode()
	require.True(t, ok)
	assert.Equal(t, search.ModeAcademic, mode)

	_, ok = ToolRetrieve.SearchMode()
	assert.False(t, ok)
	assert.False(t, Tool("bogus").IsWeb())
}

func TestToolSet(t *testing.T) {
	s := NewToolSet(ToolSocial, ToolRetrieve, ToolWeb)

	assert.True(t, s.Has(ToolRetrieve))
	assert.False(t, s.Has(ToolAcademic))
	assert.False(t, s.Has(Tool("bogus")))
	assert.Equal(t, []Tool{ToolRetrieve, ToolWeb, ToolSocial}, s.Tools())
	assert.Equal(t, []Tool{ToolWeb, ToolSocial}, s.WebTools())
	assert.Equal(t, []string{"retrieve", "web", "social"}, s.Names())
	assert.False(t, s.Empty())
	assert.True(t, NewToolSet().Empty())
}

func TestPlan_Uses(t *testing.T) {
	p := Plan{{Query: "a", Tool: ToolWeb}}
	assert.False(t, p.UsesRetrieval())
	assert.True(t, p.UsesWeb())
}
