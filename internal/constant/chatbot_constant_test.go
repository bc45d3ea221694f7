package constant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessagesAreDistinct(t *testing.T) {
	msgs := []string{EmptyQueryMessage, PlanningFailedMessage, DocumentsLackInformationMessage, SynthesisErrorPrefix}
	seen := map[string]bool{}
	for _, m := range msgs {
		assert.NotEmpty(t, m)
		assert.False(t, seen[m], m)
		seen[m] = true
	}
	assert.NotEqual(t, TurnRoleHuman, TurnRoleAI)
}
