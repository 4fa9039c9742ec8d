package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "FloWorx", "floworx"},
		{"spaces and punctuation", "The Hot Tub Man, Ltd.", "thehottubmanltd"},
		{"digits kept", "24/7 Plumbing", "247plumbing"},
		{"already normalized", "acmehvac", "acmehvac"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestValidProvider(t *testing.T) {
	assert.True(t, ValidProvider(ProviderGmail))
	assert.True(t, ValidProvider(ProviderOutlook))
	assert.False(t, ValidProvider("imap"))
	assert.False(t, ValidProvider(""))
	assert.False(t, ValidProvider("Gmail"))
}
