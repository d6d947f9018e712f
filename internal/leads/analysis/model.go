package analysis

import (
	"context"
	"net/http"
	"strings"

	"couvreur_backend/platform/config"
)

// NewVisionModel builds the model selected by AI_PROVIDER. It returns nil
// when vision is disabled; the analyzer then answers with the fallback.
func NewVisionModel(ctx context.Context, cfg config.VisionConfig) (VisionModel, error) {
	if !cfg.IsVisionEnabled() {
		return nil, nil
	}
	if cfg.GetAIProvider() == "gemini" {
		// Gateway model ids carry a vendor prefix the Gemini API does not accept.
		model, err := NewGeminiModel(ctx, cfg.GetGeminiAPIKey(), strings.TrimPrefix(cfg.GetAIModel(), "google/"))
		if err != nil {
			return nil, err
		}
		return model, nil
	}
	return NewGatewayModel(GatewayConfig{
		APIKey:  cfg.GetAIAPIKey(),
		BaseURL: cfg.GetAIGatewayURL(),
		Model:   cfg.GetAIModel(),
	}, &http.Client{}), nil
}
