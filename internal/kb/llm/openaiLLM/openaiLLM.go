package openaiLLM

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"kbase/internal/config"
	"kbase/internal/customHttpClient"
	"kbase/internal/kb/llm"
	"kbase/pkg/logger_i"
)

type llmClient struct {
	client    openai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewClient(modelName string, apikey string) llm.Provider {
	logger := logger_i.NewLogger("llm_openai")

	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.PooledClient()),
	)

	logger.Info("OpenAI client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, logger: logger}
}

func (c *llmClient) Generate(ctx context.Context, question string, contextText string) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	userPrompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s", contextText, question)

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.ModelContext),
			openai.UserMessage(userPrompt),
		},
		Model:       openai.ChatModel(c.modelName),
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		log.Error("OpenAI generation failed", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion carried no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
