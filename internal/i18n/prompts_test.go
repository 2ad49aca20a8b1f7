package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"en", "en"},
		{"en-US", "en"},
		{"am", "am"},
		{"am-ET", "am"},
		{"fr", "en"}, //unsupported falls back
		{"", "en"},
		{"not a tag", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.code))
		})
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	//am has no entry for this key, en does
	assert.Equal(t, prompts["en"]["field.firstName"], T("am", "field.firstName"))
}

func TestTUsesLocaleWhenPresent(t *testing.T) {
	assert.Equal(t, prompts["am"]["cancelled"], T("am", "cancelled"))
	assert.NotEqual(t, prompts["en"]["cancelled"], T("am", "cancelled"))
}

func TestTUnknownKeyReturnsKey(t *testing.T) {
	assert.Equal(t, "no_such_key", T("en", "no_such_key"))
}
