package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MessageContent is the content of one chat turn. A turn is either plain text
// or text with an attached image reference (a data URI or plain URL). On the
// wire a text-only turn is a JSON string; a turn with an image is the
// structured two-part form the gateway expects:
//
//	[{"type":"text","text":...},{"type":"image_url","image_url":{"url":...}}]
type MessageContent struct {
	Text     string
	ImageURL string
}

func TextContent(text string) MessageContent {
	return MessageContent{Text: text}
}

func (c MessageContent) HasImage() bool {
	return c.ImageURL != ""
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *contentImage `json:"image_url,omitempty"`
}

type contentImage struct {
	URL string `json:"url"`
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if !c.HasImage() {
		return json.Marshal(c.Text)
	}
	parts := []contentPart{
		{Type: "text", Text: c.Text},
		{Type: "image_url", ImageURL: &contentImage{URL: c.ImageURL}},
	}
	return json.Marshal(parts)
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*c = MessageContent{Text: plain}
		return nil
	}

	var parts []contentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or a part list: %w", err)
	}

	var texts []string
	var imageURL string
	for _, part := range parts {
		switch part.Type {
		case "text":
			texts = append(texts, part.Text)
		case "image_url":
			if imageURL == "" && part.ImageURL != nil {
				imageURL = part.ImageURL.URL
			}
		}
	}
	*c = MessageContent{
		Text:     strings.Join(texts, " "),
		ImageURL: imageURL,
	}
	return nil
}
