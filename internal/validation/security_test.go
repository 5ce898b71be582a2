package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", SanitizeInput("  <script>alert(1)</script> "))
	assert.Equal(t, "alert(1)", SanitizeInput("JavaScript:alert(1)"))
	assert.Equal(t, "img src=x \"x\"", SanitizeInput(`<img src=x onerror="x">`))
	assert.Len(t, []rune(SanitizeInput(strings.Repeat("ب", 1200))), MaxSanitizedLength)
}

func TestSanitizeMap(t *testing.T) {
	payload := map[string]interface{}{"address": " <b>Cairo</b> ", "age": 4.0}
	SanitizeMap(payload)
	assert.Equal(t, "bCairo/b", payload["address"])
	assert.Equal(t, 4.0, payload["age"])
}

func TestIsValidEmailAndPhone(t *testing.T) {
	assert.True(t, IsValidEmail("parent@example.com"))
	assert.False(t, IsValidEmail("parent@example"))
	assert.False(t, IsValidEmail(strings.Repeat("a", 250)+"@x.com"))
	assert.True(t, IsValidPhoneNumber("01212345678"))
	assert.False(t, IsValidPhoneNumber("01312345678"))
}

func TestPasswordStrength(t *testing.T) {
	weak := PasswordStrength("abc")
	assert.False(t, weak.Valid)
	assert.Equal(t, 1, weak.Score)
	assert.Contains(t, weak.Feedback, "Password must be at least 8 characters long")

	strong := PasswordStrength("Rajac#2025")
	assert.True(t, strong.Valid)
	assert.Equal(t, 5, strong.Score)
	assert.Equal(t, []string{"Strong password!"}, strong.Feedback)

	fourOfFive := PasswordStrength("rajacschool2025!")
	assert.True(t, fourOfFive.Valid)
	assert.Equal(t, 4, fourOfFive.Score)
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, token, 32)

	other, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
