package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Category selections must land in this range or the whole add is aborted.
const (
	minCategories = 3
	maxCategories = 5
)

// ErrInvalidCategoryResponse means the backend's answer could not be mapped
// to an acceptable set of known category labels.
var ErrInvalidCategoryResponse = errors.New("invalid category response")

// ParseCategories splits a comma-separated backend response and maps each
// entry, case-insensitively, onto the allowed labels. The returned names are
// the canonical labels from allowed, never the model's spelling. Unknown
// labels or a count outside the accepted range fail the parse.
func ParseCategories(response string, allowed []string) ([]string, error) {
	canonical := make(map[string]string, len(allowed))
	for _, name := range allowed {
		canonical[strings.ToLower(strings.TrimSpace(name))] = name
	}

	var selected []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(response, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, ok := canonical[strings.ToLower(part)]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an available category", ErrInvalidCategoryResponse, part)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		selected = append(selected, name)
	}

	if len(selected) < minCategories || len(selected) > maxCategories {
		return nil, fmt.Errorf("%w: got %d categories, need between %d and %d",
			ErrInvalidCategoryResponse, len(selected), minCategories, maxCategories)
	}
	return selected, nil
}

// SelectCategories asks the provider to pick categories for the book and
// validates the answer against the allowed labels. An invalid answer earns
// exactly one retry; a second failure aborts.
func SelectCategories(ctx context.Context, provider Provider, title, author, description string, allowed []string) ([]string, error) {
	if len(allowed) == 0 {
		return nil, fmt.Errorf("no categories available to select from")
	}

	prompt := CategoryPrompt(title, author, description, allowed)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		response, err := provider.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("category selection failed: %w", err)
		}

		selected, err := ParseCategories(response, allowed)
		if err == nil {
			return selected, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("category selection failed after retry: %w", lastErr)
}
