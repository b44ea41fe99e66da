// Package llmjson turns single-prompt LLM calls into typed values. Responses
// are requested in JSON mode, but providers still occasionally wrap the
// payload in markdown fences or prose, so parsing goes through ExtractJSON
// before unmarshalling.
package llmjson

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

func Complete[T any](ctx context.Context, model llms.Model, prompt string) (T, error) {
	var out T

	completion, err := llms.GenerateFromSinglePrompt(ctx, model, prompt,
		llms.WithJSONMode(),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		return out, fmt.Errorf("llm call failed: %w", err)
	}

	payload := ExtractJSON(completion)
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		log.Printf("[DEBUG] Unparseable LLM payload: %s", completion)
		return out, fmt.Errorf("failed to parse llm json response: %w", err)
	}

	return out, nil
}

// ExtractJSON strips markdown fences and surrounding prose from a completion,
// keeping the outermost JSON object or array.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return s
	}
	return s[start : end+1]
}
