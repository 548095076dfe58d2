package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"vouch/internal/services"
)

// Part is one element of a generation request.
type Part struct {
	Text     string    `json:"text,omitempty"`
	FileData *FileData `json:"fileData,omitempty"`
}

// FileData references an uploaded file.
type FileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// FilePart builds a part referencing a remote file.
func FilePart(uri, mimeType string) Part {
	return Part{FileData: &FileData{FileURI: uri, MimeType: mimeType}}
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// ErrEmptyContent reports a response without any text parts.
var ErrEmptyContent = errors.New("gemini response contained no text")

// GenerateContent sends the parts to the named model and returns the
// concatenated text of the first candidate.
func (c *Client) GenerateContent(ctx context.Context, model string, parts ...Part) (string, error) {
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if model == "" {
		return "", services.Wrap(services.ErrValidation, "reasoning", "generate", "model identifier is empty", nil)
	}
	payload := generateRequest{Contents: []content{{Role: "user", Parts: parts}}}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(model))

	var resp generateResponse
	if err := c.doJSON(ctx, "generate", http.MethodPost, endpoint, payload, &resp); err != nil {
		if ctx.Err() == nil && Classify(err) == KindTransient {
			return "", services.Wrap(services.ErrTransientBackend, "reasoning", "generate", model, err)
		}
		return "", err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini generate: prompt blocked: %s: %w", resp.PromptFeedback.BlockReason, ErrEmptyContent)
	}
	for _, candidate := range resp.Candidates {
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		if text := b.String(); strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", ErrEmptyContent
}
