package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurn_UnmarshalFormats(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Turn
	}{
		{
			name: "current",
			in:   `{"role":"human","content":"hi","images":["data:image/png;base64,AA"]}`,
			want: Turn{Role: "human", Content: "hi", Images: []string{"data:image/png;base64,AA"}},
		},
		{
			name: "legacy single image",
			in:   `{"type":"human","content":"look","image_data":"data:image/png;base64,BB"}`,
			want: Turn{Role: "human", Content: "look", Images: []string{"data:image/png;base64,BB"}},
		},
		{
			name: "legacy image list",
			in:   `{"type":"human","content":"two","image_data":["u1","u2"]}`,
			want: Turn{Role: "human", Content: "two", Images: []string{"u1", "u2"}},
		},
		{
			name: "legacy null image",
			in:   `{"type":"ai","content":"answer","image_data":null}`,
			want: Turn{Role: "ai", Content: "answer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Turn
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTurn_UnmarshalBadImageData(t *testing.T) {
	var got Turn
	assert.Error(t, json.Unmarshal([]byte(`{"type":"human","content":"x","image_data":42}`), &got))
}

func TestTurn_MarshalOmitsEmptyImages(t *testing.T) {
	b, err := json.Marshal(Turn{Role: "ai", Content: "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"ai","content":"ok"}`, string(b))
}
