package usecases

import "unicode"

// DetectLanguage picks the response language for a message. Messages
// written mostly in Devanagari are answered in Hindi; everything else
// defaults to English. Good enough to split the cache by language
// without a remote detection call.
func DetectLanguage(text string) string {
	var devanagari, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Devanagari, r) {
			devanagari++
		}
	}
	if letters > 0 && devanagari*2 > letters {
		return "hi"
	}
	return "en"
}
