package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"kbase/internal/config"
	"kbase/internal/kb/llm"
	"kbase/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewClient(ctx context.Context, modelName string, apikey string) (llm.Provider, error) {
	logger := logger_i.NewLogger("llm_gemini")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	logger.Debug("Gemini " + modelName + " client created")
	logger.Info("Gemini client created")
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, question string, contextText string) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.ModelContext},
		},
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s", contextText, question)

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       &temperature,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		contentConfig,
	)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	return result.Text(), nil
}
