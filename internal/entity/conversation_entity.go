package entity

import (
	"encoding/json"
	"fmt"
)

// Turn is one message of a conversation. Images are data URIs.
type Turn struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type Conversation struct {
	SessionKey string
	Turns      []Turn
}

// legacyTurn is the shape written by earlier versions of the backend:
// {"type": "human", "content": "...", "image_data": "<uri>" | ["<uri>", ...]}.
type legacyTurn struct {
	Role      string          `json:"role"`
	Type      string          `json:"type"`
	Content   string          `json:"content"`
	Images    []string        `json:"images"`
	ImageData json.RawMessage `json:"image_data"`
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw legacyTurn
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Role = raw.Role
	if t.Role == "" {
		t.Role = raw.Type
	}
	t.Content = raw.Content
	t.Images = raw.Images

	if len(t.Images) == 0 && len(raw.ImageData) > 0 && string(raw.ImageData) != "null" {
		var one string
		if err := json.Unmarshal(raw.ImageData, &one); err == nil {
			if one != "" {
				t.Images = []string{one}
			}
			return nil
		}
		var many []string
		if err := json.Unmarshal(raw.ImageData, &many); err != nil {
			return fmt.Errorf("image_data: %w", err)
		}
		t.Images = many
	}
	return nil
}
