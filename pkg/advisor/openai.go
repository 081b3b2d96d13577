package advisor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"

	"github.com/Fepozopo/pixedit/pkg/logging"
)

// DefaultModel is used when the configured model is not a known vision model.
const DefaultModel = "gpt-4o"

// VisionModels lists the chat models accepted by ResolveModel.
var VisionModels = []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-4.1", "gpt-4.1-mini"}

// ResolveModel returns name when it is a known vision model and DefaultModel otherwise.
func ResolveModel(name string) string {
	if lo.Contains(VisionModels, name) {
		return name
	}
	return DefaultModel
}

// OpenAIConfig configures NewOpenAI.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAI consults an OpenAI-compatible chat completion endpoint with the
// image attached as a data URI.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	log       *logging.Logger
}

// NewOpenAI builds the client. An unknown model falls back to DefaultModel
// with a warning.
func NewOpenAI(cfg OpenAIConfig, log *logging.Logger) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	log = log.WithTag("advisor")
	model := ResolveModel(cfg.Model)
	if model != cfg.Model {
		log.Warn("model not available, using default", logging.Fields{"requested": cfg.Model, "model": model})
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
		log:       log,
	}
}

// Model reports the model in use.
func (o *OpenAI) Model() string { return o.model }

// Advise sends the instruction and image and returns the reply text.
func (o *OpenAI) Advise(ctx context.Context, req Request) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	text, err := Instruction(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFallback, err)
	}
	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: text}}
	if len(req.Image) > 0 {
		mime := req.MIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(req.Image)),
			},
		})
	}

	o.log.Debug("requesting analysis", logging.Fields{"model": o.model, "image_bytes": len(req.Image)})
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	})
	if err != nil {
		o.log.Warn("analysis failed, using fallback", logging.Fields{"err": err})
		return "", fmt.Errorf("%w: %v", ErrFallback, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty response", ErrFallback)
	}
	return resp.Choices[0].Message.Content, nil
}

// Instruction renders the text part of an advisor request.
func Instruction(req Request) (string, error) {
	stats, err := json.Marshal(req.Summary)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are an image editing assistant. The user wants to: %q.\n", req.Prompt)
	fmt.Fprintf(&b, "Image statistics: %s\n", stats)
	b.WriteString("Describe the concrete visual adjustments needed, using words such as brighter, darker, ")
	b.WriteString("contrast, saturation, black and white, vintage, blur, warm, cool, professional or artistic.")
	return b.String(), nil
}
