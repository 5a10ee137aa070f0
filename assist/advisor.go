// Package assist drafts policy documents with a generative model.
package assist

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

const systemInstruction = `You are an investment policy writer. You receive
the current allocation and attribution reports of a personal portfolio, in
markdown. Draft a concise policy rationale document in markdown: summarize
the current structure, note the largest deviations from target, and propose
next steps. Do not invent holdings that are not in the reports.`

// Advisor is a chat session that turns portfolio reports into a draft policy
// rationale.
type Advisor struct {
	ModelName string
	chat      *genai.Chat
}

// NewAdvisor returns an Advisor on the default model.
func NewAdvisor() *Advisor {
	return &Advisor{ModelName: defaultModel}
}

// Start opens the chat session.
func (a *Advisor) Start(ctx context.Context, client *genai.Client) error {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}
	chat, err := client.Chats.Create(ctx, a.ModelName, config, nil)
	if err != nil {
		return err
	}
	a.chat = chat
	return nil
}

// DraftRationale asks the model for a rationale draft from the given report
// documents.
func (a *Advisor) DraftRationale(ctx context.Context, reports ...string) (string, error) {
	parts := make([]*genai.Part, 0, len(reports))
	for _, r := range reports {
		parts = append(parts, &genai.Part{Text: r})
	}
	resp, err := a.chat.Send(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from model %s", a.ModelName)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
