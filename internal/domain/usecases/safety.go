package usecases

import "strings"

// FilterResponse is the final content-safety gate. It runs on every
// generator output before it is cached or returned. If the text contains
// any forbidden phrase (case-insensitive substring match) the fixed
// refusal message is returned with safe=false; otherwise the text passes
// through unchanged.
func FilterResponse(rules *Rules, text string) (finalText string, safe bool) {
	lower := strings.ToLower(text)
	for _, phrase := range rules.ForbiddenPhrases {
		if strings.Contains(lower, phrase) {
			return rules.RefusalMessage, false
		}
	}
	return text, true
}
