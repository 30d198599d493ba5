package llm

import (
	"context"
	"fmt"
	"strings"
)

// GenerateSynopsis asks the provider for a synopsis and cleans the answer
// of the decorations models like to prepend.
func GenerateSynopsis(ctx context.Context, provider Provider, title, author, sourceInfo string, targetWords int) (string, error) {
	prompt := SynopsisPrompt(title, author, sourceInfo, targetWords)

	response, err := provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("synopsis generation failed: %w", err)
	}

	synopsis := CleanSynopsis(response)
	if synopsis == "" {
		return "", fmt.Errorf("synopsis generation returned empty text")
	}
	return synopsis, nil
}

// CleanSynopsis strips leading heading decorations from a generated synopsis
func CleanSynopsis(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"SYNOPSIS:", "Synopsis:", "**Synopsis**:", "**Synopsis**"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
			break
		}
	}
	return text
}
