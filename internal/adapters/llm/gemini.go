package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/auralabs/lyra/internal/domain"
	"google.golang.org/genai"
)

// Backend names accepted by Config.Backend.
const (
	BackendGeminiAPI = "gemini-api"
	BackendVertex    = "vertex"
)

// Default model names per capability.
const (
	DefaultTextModel = "gemini-3-flash-preview"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"
	DefaultLiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"
)

// Config selects the Gemini backend and models. The Gemini API backend needs
// an API key; the Vertex backend needs a GCP project and location.
type Config struct {
	Backend  string
	APIKey   string
	Project  string
	Location string

	TextModel string
	TTSModel  string
	LiveModel string
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendGeminiAPI
	}
	if c.TextModel == "" {
		c.TextModel = DefaultTextModel
	}
	if c.TTSModel == "" {
		c.TTSModel = DefaultTTSModel
	}
	if c.LiveModel == "" {
		c.LiveModel = DefaultLiveModel
	}
}

// Client wraps a genai client and implements the text, speech, and live ports.
type Client struct {
	client *genai.Client
	cfg    Config
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.applyDefaults()

	var cc *genai.ClientConfig
	switch cfg.Backend {
	case BackendGeminiAPI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini-api backend requires an API key")
		}
		cc = &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
	case BackendVertex:
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("vertex backend requires a GCP project and location")
		}
		cc = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// GenerateReply implements domain.TextGenerator.
func (c *Client) GenerateReply(
	ctx context.Context,
	userMessage string,
	convCtx domain.ConversationContext,
) (*domain.Reply, error) {
	system := BuildSystemPrompt(convCtx.Persona)

	var contents []*genai.Content
	for _, m := range convCtx.History {
		var role genai.Role
		switch m.Role {
		case domain.RoleUser:
			role = genai.RoleUser
		case domain.RoleAgent:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(8192)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}
	if convCtx.Options.SearchGrounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if convCtx.Options.ThinkingMode {
		budget := int32(16000)
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	res, err := c.client.Models.GenerateContent(ctx, c.cfg.TextModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	return &domain.Reply{
		Text:    res.Text(),
		Sources: extractCitations(res),
	}, nil
}

// extractCitations maps grounding chunks from a search-grounded response
// into citations. Non-web chunks are skipped.
func extractCitations(res *genai.GenerateContentResponse) []domain.Citation {
	if len(res.Candidates) == 0 || res.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []domain.Citation
	for _, ch := range res.Candidates[0].GroundingMetadata.GroundingChunks {
		if ch.Web == nil {
			continue
		}
		out = append(out, domain.Citation{Title: ch.Web.Title, URI: ch.Web.URI})
	}
	return out
}

// parsePCMRate reads the rate parameter from a mime type such as
// "audio/pcm;rate=24000", falling back when absent or malformed.
func parsePCMRate(mimeType string, fallback int) int {
	for _, part := range strings.Split(mimeType, ";") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(part), "rate="); ok {
			if rate, err := strconv.Atoi(v); err == nil && rate > 0 {
				return rate
			}
		}
	}
	return fallback
}
