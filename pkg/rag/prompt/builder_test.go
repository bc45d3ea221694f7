package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_SystemPerMode(t *testing.T) {
	s := Default()

	grounded := s.System(ModeGrounded)
	assert.Contains(t, grounded, "documents do not contain this information")
	assert.Contains(t, grounded, "Final Answer:")

	direct := s.System(ModeDirect)
	assert.Contains(t, direct, "your own knowledge")
	assert.NotContains(t, direct, "<document_context>")

	assert.Contains(t, s.System(ModeWebOnly), "<web_context>")
	assert.Equal(t, "grounded", ModeGrounded.String())
}

func TestSet_Planner(t *testing.T) {
	out := Default().Planner("Search the web for Go 1.24", []string{"retrieve", "web"}, true, "human: hi")

	assert.Contains(t, out, "- retrieve: search the user's uploaded documents")
	assert.Contains(t, out, "- web: general web search")
	assert.NotContains(t, out, "- academic")
	assert.Contains(t, out, "explicit_external_request: true")
	assert.Contains(t, out, "<conversation>\nhuman: hi\n</conversation>")
	assert.Contains(t, out, "<user_query>\nSearch the web for Go 1.24\n</user_query>")
}

func TestSet_UserMessage(t *testing.T) {
	s := Default()

	assert.Equal(t, "Question: hi", s.UserMessage("hi", "", ""))

	msg := s.UserMessage("When?", "It started in 2019.", "")
	assert.Contains(t, msg, "<document_context>\nIt started in 2019.\n</document_context>")
	assert.NotContains(t, msg, "<web_context>")
	assert.Contains(t, msg, "Question: When?")
}

func TestSet_IsValue(t *testing.T) {
	a := Default()
	b := a
	assert.Equal(t, a.System(ModeDirect), b.System(ModeDirect))
}
