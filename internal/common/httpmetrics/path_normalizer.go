package httpmetrics

import "strings"

// NormalizePath collapses path parameters so metric labels stay bounded:
// usernames under /api/users/ and numeric message ids become placeholders.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i > 0 && parts[i-1] == "users" {
			parts[i] = "{username}"
			continue
		}
		if isNumeric(part) {
			parts[i] = "{id}"
		}
	}

	result := strings.Join(parts, "/")
	if result == "" {
		return "/"
	}

	return result
}

func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
