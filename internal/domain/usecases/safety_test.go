package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterResponse_SafeTextUnchanged(t *testing.T) {
	rules := DefaultRules()
	text := "Water supply resumes at 5 PM as per the municipal notice."

	out, safe := FilterResponse(rules, text)

	assert.True(t, safe)
	assert.Equal(t, text, out)
}

func TestFilterResponse_ForbiddenPhraseReplaced(t *testing.T) {
	rules := DefaultRules()

	out, safe := FilterResponse(rules, "The outage will probably end by evening.")

	assert.False(t, safe)
	assert.Equal(t, rules.RefusalMessage, out)
}

func TestFilterResponse_CaseInsensitive(t *testing.T) {
	rules := DefaultRules()

	_, safe := FilterResponse(rules, "I Think the clinic is open.")

	assert.False(t, safe)
}

func TestFilterResponse_Idempotent(t *testing.T) {
	rules := DefaultRules()

	once, safe := FilterResponse(rules, "It might be a transformer fault.")
	assert.False(t, safe)

	twice, safe := FilterResponse(rules, once)
	assert.True(t, safe)
	assert.Equal(t, once, twice)
}
