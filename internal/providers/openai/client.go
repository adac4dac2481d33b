// Package openai provides a lightweight facade over the OpenAI API so the
// pipeline stages can focus on translating domain requests to provider calls.
// It covers the three capabilities the pipeline consumes: structured chat
// completions, text embeddings, and speech synthesis.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"

	"videogen/internal/infra"
	"videogen/internal/providers/retry"
)

// ErrInvalidResponse marks a provider reply that failed structural validation.
// Callers classify it separately from transport failures.
var ErrInvalidResponse = errors.New("invalid structured response")

// Options controls how the client is configured.
type Options struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	SpeechModel    string
	HTTPClient     *http.Client
	Timeout        time.Duration
	Retries        int
	Logger         *infra.Logger
}

// Client wraps the OpenAI SDK with per-call timeouts and a bounded
// exponential-backoff retry for transient transport failures.
type Client struct {
	api            openai.Client
	chatModel      string
	embeddingModel string
	speechModel    string
	timeout        time.Duration
	retries        int
	logger         *infra.Logger
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		requestOpts = append(requestOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = 3
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		api:            openai.NewClient(requestOpts...),
		chatModel:      defaultString(opts.ChatModel, "gpt-4o-mini"),
		embeddingModel: defaultString(opts.EmbeddingModel, "text-embedding-3-small"),
		speechModel:    defaultString(opts.SpeechModel, "tts-1"),
		timeout:        timeout,
		retries:        retries,
		logger:         logger,
	}, nil
}

// GenerateSchema builds a strict JSON schema for T, suitable for the
// structured-outputs response format.
func GenerateSchema[T any]() any {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// CompleteJSON sends the prompt with a schema-constrained response format and
// decodes the reply into out. Transport errors are retried; a reply that does
// not parse as the schema is reported as ErrInvalidResponse and not retried.
func (c *Client) CompleteJSON(ctx context.Context, schemaName, prompt string, schema any, out any) error {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   schemaName,
		Schema: schema,
		Strict: openai.Bool(true),
	}

	var completion *openai.ChatCompletion
	err := retry.Do(ctx, c.retries, 500*time.Millisecond, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var callErr error
		completion, callErr = c.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: openai.ChatModel(c.chatModel),
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
					JSONSchema: schemaParam,
				},
			},
		})
		return callErr
	})
	if err != nil {
		return fmt.Errorf("openai: chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
	}

	raw := completion.Choices[0].Message.Content
	if raw == "" {
		return fmt.Errorf("%w: empty reply, finish reason %s", ErrInvalidResponse, completion.Choices[0].FinishReason)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.logger.Debug().
		Str("model", c.chatModel).
		Str("schema", schemaName).
		Msg("openai: structured completion ok")

	return nil
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var res *openai.CreateEmbeddingResponse
	err := retry.Do(ctx, c.retries, 500*time.Millisecond, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var callErr error
		res, callErr = c.api.Embeddings.New(callCtx, openai.EmbeddingNewParams{
			Model: openai.EmbeddingModel(c.embeddingModel),
			Input: openai.EmbeddingNewParamsInputUnion{
				OfString: openai.String(text),
			},
		})
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("openai: embedding: %w", err)
	}

	if len(res.Data) == 0 {
		return nil, fmt.Errorf("%w: embedding response has no data", ErrInvalidResponse)
	}

	src := res.Data[0].Embedding
	vec := make([]float32, len(src))
	for i, v := range src {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Synthesize converts narration text into MP3 audio bytes using the
// configured voice.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("openai: narration text is empty")
	}

	var data []byte
	err := retry.Do(ctx, c.retries, 500*time.Millisecond, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		res, callErr := c.api.Audio.Speech.New(callCtx, openai.AudioSpeechNewParams{
			Model:          openai.SpeechModel(c.speechModel),
			Voice:          openai.AudioSpeechNewParamsVoice(voice),
			Input:          text,
			ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
		})
		if callErr != nil {
			return callErr
		}
		defer res.Body.Close()

		data, callErr = io.ReadAll(res.Body)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("openai: speech synthesis: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: speech response is empty", ErrInvalidResponse)
	}

	c.logger.Debug().
		Str("model", c.speechModel).
		Str("voice", voice).
		Int("bytes", len(data)).
		Msg("openai: synthesized narration")

	return data, nil
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
