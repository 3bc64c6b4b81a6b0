package definitions

import "encoding/base64"

// ContentBlock is one element of a tool result. Type is either "text"
// or "image"; image blocks carry base64 data plus a mime type.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

func ImageBlock(png []byte) ContentBlock {
	return ContentBlock{
		Type:     "image",
		Data:     base64.StdEncoding.EncodeToString(png),
		MimeType: "image/png",
	}
}
