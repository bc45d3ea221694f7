// Package prompt holds the immutable prompt templates used by the planner and
// the response generator.
package prompt

import (
	"fmt"
	"strings"
)

// Mode selects the synthesis instructions for one turn.
type Mode int

const (
	// ModeDirect: no tools enabled, the model may use its own knowledge.
	ModeDirect Mode = iota
	// ModeGrounded: document retrieval ran; the answer must come from the documents,
	// web results may supplement them.
	ModeGrounded
	// ModeWebOnly: only web tools ran.
	ModeWebOnly
)

func (m Mode) String() string {
	switch m {
	case ModeGrounded:
		return "grounded"
	case ModeWebOnly:
		return "web_only"
	default:
		return "direct"
	}
}

// Set is a bundle of templates. Its fields are unexported so a Set cannot be
// changed after construction; pass it by value.
type Set struct {
	planner            string
	direct             string
	grounded           string
	webOnly            string
	finalAnswerSection string
}

// Default returns the built-in templates.
func Default() Set {
	return Set{
		planner:            plannerTemplate,
		direct:             directSystem,
		grounded:           groundedSystem,
		webOnly:            webOnlySystem,
		finalAnswerSection: finalAnswerInstructions,
	}
}

// System returns the system prompt for mode.
func (s Set) System(mode Mode) string {
	var body string
	switch mode {
	case ModeGrounded:
		body = s.grounded
	case ModeWebOnly:
		body = s.webOnly
	default:
		body = s.direct
	}
	return body + "\n\n" + s.finalAnswerSection
}

// Planner renders the planning prompt.
func (s Set) Planner(query string, tools []string, externalRequested bool, history string) string {
	var prompt strings.Builder

	prompt.WriteString(s.planner)
	prompt.WriteString("\n\n<enabled_tools>\n")
	for _, t := range tools {
		prompt.WriteString("- ")
		prompt.WriteString(t)
		prompt.WriteString(": ")
		prompt.WriteString(toolDescriptions[t])
		prompt.WriteString("\n")
	}
	prompt.WriteString("</enabled_tools>\n\n")

	if history != "" {
		prompt.WriteString("<conversation>\n")
		prompt.WriteString(history)
		prompt.WriteString("\n</conversation>\n\n")
	}

	prompt.WriteString("<hints>\n")
	fmt.Fprintf(&prompt, "explicit_external_request: %t\n", externalRequested)
	prompt.WriteString("</hints>\n\n")

	prompt.WriteString("<user_query>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_query>\n")

	return prompt.String()
}

// UserMessage wraps the gathered context and the question for the completion call.
func (s Set) UserMessage(query, documentContext, webContext string) string {
	var prompt strings.Builder

	if documentContext != "" {
		prompt.WriteString("<document_context>\n")
		prompt.WriteString(documentContext)
		prompt.WriteString("\n</document_context>\n\n")
	}
	if webContext != "" {
		prompt.WriteString("<web_context>\n")
		prompt.WriteString(webContext)
		prompt.WriteString("\n</web_context>\n\n")
	}

	prompt.WriteString("Question: ")
	prompt.WriteString(query)
	return prompt.String()
}

var toolDescriptions = map[string]string{
	"retrieve": "search the user's uploaded documents",
	"web":      "general web search",
	"academic": "web search restricted to scholarly and research sites",
	"social":   "web search restricted to social and discussion platforms",
}

const plannerTemplate = `<task>
You plan which tools to run for the user's query.
Split the query into its distinct topics. Phrasings that ask for the same information are ONE topic.
For each topic choose tools from <enabled_tools> only.
</task>

<rules>
1. If "retrieve" is enabled, use it exactly once for every topic.
2. Use a web tool ("web", "academic", "social") for a topic only when the user explicitly asks for outside information
   (for example "search", "find more about", "look up", "based on the literature", "latest news").
3. If "retrieve" is not enabled, every topic uses every enabled web tool.
4. Never repeat the same tool with the same topic.
5. Write each topic as a short standalone search query. Resolve pronouns using the conversation.
</rules>

<output_format>
Reply with ONLY a JSON array and nothing else. Each element has exactly two string fields:
[{"topic": "<sub-query>", "tool": "<tool name>"}]
</output_format>`

const directSystem = `You are a helpful assistant. Answer the user's question using your own knowledge.
Match the depth of the answer to the question: short factual questions get a short answer,
analytical questions get a structured answer with headings.`

const groundedSystem = `You are a helpful assistant answering from the user's documents.
Use ONLY the text inside <document_context> to answer.
If <document_context> does not contain the answer, say explicitly that the documents do not contain this information.
Do NOT fill the gap with your own trained knowledge.
If <web_context> is present you may use it to supplement the documents; make clear which parts come from the web.
Match the depth of the answer to the question: short factual questions get a short answer,
analytical questions get a structured answer with headings.`

const webOnlySystem = `You are a helpful assistant answering from live web search results.
Base the answer on the text inside <web_context>. If the results do not answer the question, say so.
Match the depth of the answer to the question: short factual questions get a short answer,
analytical questions get a structured answer with headings.`

const finalAnswerInstructions = `Do not mention source ids or citation markers; sources are listed separately.
You may reason first. Put the answer shown to the user after a line starting with "Final Answer:".`
