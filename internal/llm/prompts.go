package llm

import (
	"fmt"
	"strings"
)

// CategoryPrompt asks the backend to pick categories for a book. The
// allowed labels are embedded verbatim so the model has nothing to invent.
func CategoryPrompt(title, author, description string, allowed []string) string {
	var b strings.Builder
	b.WriteString("You are helping catalog a book into a personal library database.\n\n")
	fmt.Fprintf(&b, "Book title: %s\n", title)
	fmt.Fprintf(&b, "Author: %s\n", author)
	if description != "" {
		fmt.Fprintf(&b, "Description: %s\n", description)
	}
	b.WriteString("\nAvailable categories (choose ONLY from this list, using the exact labels):\n")
	for _, name := range allowed {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString("\nSelect between 3 and 5 categories that best fit this book. ")
	b.WriteString("Respond with ONLY the chosen category labels, exactly as written above, ")
	b.WriteString("separated by commas. No explanations, no numbering, no extra text.")
	return b.String()
}

// SynopsisPrompt asks the backend for a fresh synopsis when the sourced
// description is too thin to store as-is.
func SynopsisPrompt(title, author, sourceInfo string, targetWords int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a synopsis of approximately %d words for the following book.\n\n", targetWords)
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Author: %s\n", author)
	if sourceInfo != "" {
		fmt.Fprintf(&b, "\nKnown information about the book:\n%s\n", sourceInfo)
	}
	b.WriteString("\nThe synopsis should describe the premise and themes without revealing ")
	b.WriteString("the ending or major plot twists. Respond with ONLY the synopsis text, ")
	b.WriteString("no headings and no commentary.")
	return b.String()
}
