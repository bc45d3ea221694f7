package constant

const (
	TurnRoleHuman = "human"
	TurnRoleAI    = "ai"

	EmptyQueryMessage = "Please provide a query."

	PlanningFailedMessage = "Sorry, I could not work out how to handle your request. Please try rephrasing it."

	DocumentsLackInformationMessage = "The uploaded documents do not contain information to answer this question."

	// Followed by the first 100 characters of the error and "...".
	SynthesisErrorPrefix = "Sorry, an error occurred while processing your request: "

	SynthesisErrorExcerptLength = 100
)
