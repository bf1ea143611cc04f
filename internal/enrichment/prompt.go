package enrichment

import (
	"fmt"
	"strings"
)

const maxTranscriptChars = 48000

// PromptInput holds the transcript data needed to build the LLM prompt.
type PromptInput struct {
	Source string // transcript file name, informational
	Text   string

	// Topic outline (optional, from segmentation)
	Topics []TopicOutline
}

// TopicOutline is one detected topic's time range.
type TopicOutline struct {
	Start    string
	End      string
	Segments int
}

const systemPrompt = `You are a professional YouTube video summarizer.

Summarize the transcript below into clear bullet points.
Keep it under 250 words.
Focus only on the most important ideas.`

func buildMessages(input PromptInput) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(input)},
	}
}

func buildUserPrompt(input PromptInput) string {
	var b strings.Builder

	if input.Source != "" {
		b.WriteString(fmt.Sprintf("## Source\n%s\n\n", input.Source))
	}

	if len(input.Topics) > 0 {
		b.WriteString("## Topic Outline\n")
		b.WriteString("Detected topic boundaries. Use them to order the bullets.\n")
		for i, t := range input.Topics {
			b.WriteString(fmt.Sprintf("- Topic %d: %s to %s (%d segments)\n", i+1, t.Start, t.End, t.Segments))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Transcript\n")
	b.WriteString(truncate(input.Text, maxTranscriptChars))

	return b.String()
}

func truncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}

	// Try to break at a newline before the limit
	truncated := text[:maxChars]
	if idx := strings.LastIndex(truncated, "\n"); idx > maxChars/2 {
		truncated = truncated[:idx]
	}

	return truncated + "\n[...truncated]"
}
