package catalog

import "strings"

// Affirmative reports whether a confirmation answer means proceed. Only an
// explicit yes counts; an empty answer declines.
func Affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
