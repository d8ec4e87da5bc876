package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidLength(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{name: "empty string fails", text: "", valid: false},
		{name: "single character passes", text: "a", valid: true},
		{name: "279 characters passes", text: strings.Repeat("x", 279), valid: true},
		{name: "280 characters fails", text: strings.Repeat("x", 280), valid: false},
		{name: "multibyte characters count once", text: strings.Repeat("é", 279), valid: true},
		{name: "280 multibyte characters fails", text: strings.Repeat("é", 280), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidLength(tt.text))
		})
	}
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@example.com"))
	assert.True(t, IsEmail("first.last@sub.example.co"))
	assert.False(t, IsEmail(""))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail("missing@tld@double.com"))
}

func TestValidLengthMessage(t *testing.T) {
	assert.Equal(t, "Thought text must be between 1 and 279 characters",
		ValidLengthMessage("Thought text"))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mar 5, 2024 at 2:30 PM", FormatDate(ts))
}
