package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/luminacare/assistant/internal/llm"
	"github.com/luminacare/assistant/internal/retrieval"
)

// contextBudget caps the total characters of chunk content embedded in the
// prompt.
const contextBudget = 4000

// Canned answers for the designed empty states. These are product copy,
// not errors, and no model call is made to produce them.
const (
	NoDocumentsAnswer = "You don't have any documents synced yet. Connect a Google Doc or upload a file and I'll be able to answer questions about it."
	NoContentAnswer   = "I couldn't find anything in your documents related to that question. Try rephrasing it, or check that the relevant document has finished syncing."
)

const systemPrompt = `You are a knowledgeable assistant for a home care agency. Answer the question using only the provided document excerpts.
Cite the excerpts you used as [Source N]. If the excerpts don't contain the answer, say so plainly.
Write in warm, plain prose. Do not use markdown formatting, headings, or bullet points.`

// Input pairs a ranked chunk with its parent document's display fields.
type Input struct {
	retrieval.ScoredChunk
	DocumentTitle string
	DocumentURL   string
}

type Result struct {
	Answer     string
	TokensUsed int
}

type Synthesizer struct {
	gateway llm.Gateway
	model   string
}

func NewSynthesizer(gw llm.Gateway, model string) *Synthesizer {
	return &Synthesizer{gateway: gw, model: model}
}

// Synthesize produces a cited natural-language answer from the top-ranked
// chunks. A gateway failure fails the whole request; there is no partial
// answer.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, inputs []Input) (*Result, error) {
	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Excerpts:\n%s\nQuestion: %s", buildContext(inputs), query)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Result{
		Answer:     CleanFormatting(resp.Content),
		TokensUsed: resp.TotalTokens,
	}, nil
}

func buildContext(inputs []Input) string {
	var sb strings.Builder
	remaining := contextBudget
	for i, in := range inputs {
		if remaining <= 0 {
			break
		}
		label := in.DocumentTitle
		if label == "" {
			label = fmt.Sprintf("Source %d", i+1)
		}
		content := in.Content
		if len(content) > remaining {
			content = truncate(content, remaining)
		}
		remaining -= len(content)
		fmt.Fprintf(&sb, "[Source %d: %s]\n%s\n\n", i+1, label, content)
	}
	return sb.String()
}
