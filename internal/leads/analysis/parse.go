package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"couvreur_backend/internal/leads/domain"
)

var errEmptyContent = errors.New("no content in model response")

// stripFences returns the body of the first fenced block, preferring a ```json fence.
// Unfenced text is returned trimmed.
func stripFences(content string) string {
	for _, marker := range []string{"```json", "```"} {
		idx := strings.Index(content, marker)
		if idx < 0 {
			continue
		}
		body := content[idx+len(marker):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(content)
}

func parseAnalysis(content string) (domain.PhotoAnalysis, error) {
	if strings.TrimSpace(content) == "" {
		return domain.PhotoAnalysis{}, errEmptyContent
	}
	var result domain.PhotoAnalysis
	if err := json.Unmarshal([]byte(stripFences(content)), &result); err != nil {
		return domain.PhotoAnalysis{}, fmt.Errorf("decode analysis payload: %w", err)
	}
	if result.Issues == nil {
		result.Issues = []string{}
	}
	return result, nil
}
