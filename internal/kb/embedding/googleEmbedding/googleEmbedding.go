package googleEmbedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"kbase/internal/config"
	"kbase/internal/kb/embedding"
	"kbase/pkg/logger_i"
)

var dimension int32 = config.EmbeddingOutputDimensionality

type Client struct {
	genAi  *genai.Client
	model  string
	logger *logger_i.Logger
}

func NewClient(ctx context.Context, modelName string, apikey string) (embedding.Embedder, error) {
	logger := logger_i.NewLogger("google_embedding")

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, fmt.Errorf("creating Google embedding client: %w", err)
	}

	logger.Debug("Google Embedding model name: " + modelName)
	logger.Info("Google Embedding client created")
	return &Client{
		genAi:  c,
		model:  modelName,
		logger: logger,
	}, nil
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, genai.Text(query))
	if err != nil {
		log.Error("Error getting Embedding from Google", "error", err.Error())
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding response carried no vectors")
	}
	return result.Embeddings[0].Values, nil
}

func (c *Client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if len(chunks) == 0 {
		return nil, nil
	}

	res, err := c.doCall(ctx, getContent(chunks))
	if err != nil || res == nil {
		if doRetry(err, log) {
			time.Sleep(5 * time.Second)
			log.Debug("Retrying in 5 seconds")
			res, err = c.doCall(ctx, getContent(chunks))
		}
		if err != nil || res == nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, err
		}
	}

	if len(res.Embeddings) != len(chunks) {
		return nil, fmt.Errorf("asked for %d embeddings, got %d", len(chunks), len(res.Embeddings))
	}

	embeddingResults := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *Client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}
