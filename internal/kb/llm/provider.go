package llm

import "context"

// Provider turns a question plus retrieved context into an answer.
// Which implementation main wires up is decided by config.AnswerProvider.
type Provider interface {
	Generate(ctx context.Context, question string, contextText string) (string, error)
}
