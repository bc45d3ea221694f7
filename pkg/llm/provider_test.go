package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	opts := Apply(Options{Model: "base"}, WithTemperature(0), WithModel(""), WithMaxTokens(64))

	require.NotNil(t, opts.Temperature)
	assert.Equal(t, 0.0, *opts.Temperature)
	assert.Equal(t, "base", opts.Model)
	assert.Equal(t, 64, opts.MaxTokens)

	opts = Apply(Options{Model: "base"}, WithModel("gpt-4o"))
	assert.Equal(t, "gpt-4o", opts.Model)
	assert.Nil(t, opts.Temperature)
}
