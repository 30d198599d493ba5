package search

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wattanit/wcm/internal/models"
)

// ErrCancelled means the user backed out of candidate selection.
var ErrCancelled = errors.New("selection cancelled")

// Descriptions in the pick list are clipped to keep the listing scannable.
const descriptionPreviewLen = 160

// SelectCandidate resolves an ambiguous result set interactively. A single
// candidate is returned without prompting. With several, a numbered list is
// written to out and one line is read from in; "q" or "0" cancels, anything
// out of range is an error.
func SelectCandidate(candidates []models.BookCandidate, in io.Reader, out io.Writer) (models.BookCandidate, error) {
	if len(candidates) == 0 {
		return models.BookCandidate{}, ErrNotFound
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	fmt.Fprintf(out, "\nFound %d possible matches:\n\n", len(candidates))
	for i, c := range candidates {
		fmt.Fprintf(out, "  %d. %s\n", i+1, c.FullTitle())
		fmt.Fprintf(out, "     by %s", c.AuthorLine())
		if c.PublishedDate != "" {
			fmt.Fprintf(out, " (%s)", c.PublishedDate)
		}
		fmt.Fprintln(out)
		if isbn := c.BestISBN(); isbn != "" {
			fmt.Fprintf(out, "     ISBN: %s\n", isbn)
		}
		if c.Description != "" {
			fmt.Fprintf(out, "     %s\n", previewDescription(c.Description))
		}
		fmt.Fprintf(out, "     Source: %s\n\n", c.Source.DisplayName())
	}
	fmt.Fprintf(out, "Select a book [1-%d], or q to cancel: ", len(candidates))

	line, err := readLine(in)
	if err != nil {
		return models.BookCandidate{}, fmt.Errorf("failed to read selection: %w", err)
	}
	line = strings.TrimSpace(line)

	switch strings.ToLower(line) {
	case "q", "quit", "0":
		return models.BookCandidate{}, ErrCancelled
	}

	index, err := strconv.Atoi(line)
	if err != nil {
		return models.BookCandidate{}, fmt.Errorf("invalid selection %q", line)
	}
	if index < 1 || index > len(candidates) {
		return models.BookCandidate{}, fmt.Errorf("selection %d out of range [1-%d]", index, len(candidates))
	}
	return candidates[index-1], nil
}

func previewDescription(description string) string {
	description = strings.Join(strings.Fields(description), " ")
	if len(description) <= descriptionPreviewLen {
		return description
	}
	return strings.TrimSpace(description[:descriptionPreviewLen]) + "..."
}

// readLine reuses an existing buffered reader so a caller interleaving its
// own prompts on the same stream does not lose buffered input.
func readLine(in io.Reader) (string, error) {
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}
