package oracle

import "strings"

// cleanResponse strips whitespace and Markdown code fences the model wraps
// around JSON payloads.
func cleanResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "\n")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "\n")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	return strings.TrimSpace(cleaned)
}

// extractObject pulls the first {...} substring out of a response that may
// carry wrapper text around the JSON object. Returns "" when no object is
// present; callers treat that as an empty result and fall back to defaults.
func extractObject(response string) string {
	cleaned := cleanResponse(response)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}

	return cleaned[start : end+1]
}
