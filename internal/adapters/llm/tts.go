package llm

import (
	"context"
	"fmt"

	"github.com/auralabs/lyra/internal/domain"
	"google.golang.org/genai"
)

// Speech responses arrive as 16-bit mono PCM at 24kHz unless the mime type
// says otherwise.
const ttsSampleRate = 24000

// Synthesize implements domain.SpeechSynthesizer through the speech model.
func (c *Client) Synthesize(ctx context.Context, text, voice string) (*domain.AudioPayload, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(ttsStylePrefix+text, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	res, err := c.client.Models.GenerateContent(ctx, c.cfg.TTSModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("speech generate content: %w", err)
	}

	blob := inlineAudio(res)
	if blob == nil || len(blob.Data) == 0 {
		return nil, fmt.Errorf("speech model returned no audio")
	}

	return &domain.AudioPayload{
		PCM:        blob.Data,
		SampleRate: parsePCMRate(blob.MIMEType, ttsSampleRate),
	}, nil
}

func inlineAudio(res *genai.GenerateContentResponse) *genai.Blob {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range res.Candidates[0].Content.Parts {
		if part.InlineData != nil {
			return part.InlineData
		}
	}
	return nil
}
