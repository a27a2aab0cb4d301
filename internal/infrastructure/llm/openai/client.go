package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/alleato-ai/pm-rag/internal/core/domain"
	"github.com/alleato-ai/pm-rag/internal/infrastructure/resilience"
)

// Client wraps the OpenAI-compatible API used for both query embeddings
// and answer generation. Lazily constructed once by bootstrap and shared;
// stateless aside from configuration.
type Client struct {
	api        *goopenai.Client
	genModel   string
	embedModel string
	executor   *resilience.Executor
}

type Config struct {
	APIKey     string
	BaseURL    string
	GenModel   string
	EmbedModel string
}

func New(cfg Config, executor *resilience.Executor) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "init llm client", fmt.Errorf("OPENAI_API_KEY is not set"))
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:        goopenai.NewClientWithConfig(apiCfg),
		genModel:   cfg.GenModel,
		embedModel: cfg.EmbedModel,
		executor:   executor,
	}, nil
}

// Embedder adapts the client to the query-embedding port.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	call := func(callCtx context.Context) error {
		resp, err := e.client.api.CreateEmbeddings(callCtx, goopenai.EmbeddingRequest{
			Input: []string{text},
			Model: goopenai.EmbeddingModel(e.client.embedModel),
		})
		if err != nil {
			return fmt.Errorf("create embedding: %w", err)
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("empty embedding result")
		}
		vector = resp.Data[0].Embedding
		return nil
	}

	var err error
	if e.client.executor != nil {
		err = e.client.executor.Execute(ctx, "llm.embed", call, classifyLLMError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// Generator adapts the client to the answer-generation port.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, systemPrompt string, history []domain.ChatMessage, message string) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range history {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: message,
	})

	var answer string
	call := func(callCtx context.Context) error {
		resp, err := g.client.api.CreateChatCompletion(callCtx, goopenai.ChatCompletionRequest{
			Model:               g.client.genModel,
			Messages:            messages,
			MaxCompletionTokens: 1000,
		})
		if err != nil {
			return fmt.Errorf("create chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no completion choices")
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	var err error
	if g.client.executor != nil {
		err = g.client.executor.Execute(ctx, "llm.generate", call, classifyLLMError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}
