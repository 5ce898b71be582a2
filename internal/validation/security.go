package validation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSanitizedLength caps sanitized free-text input, in runes.
const MaxSanitizedLength = 1000

var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	jsProtocol    = regexp.MustCompile(`(?i)javascript:`)
	eventHandler  = regexp.MustCompile(`(?i)on\w+=`)

	lowerRegex   = regexp.MustCompile(`[a-z]`)
	upperRegex   = regexp.MustCompile(`[A-Z]`)
	digitRegex   = regexp.MustCompile(`[0-9]`)
	specialRegex = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// SanitizeInput trims input and strips markup fragments commonly used for
// script injection, then caps the length.
func SanitizeInput(input string) string {
	out := strings.TrimSpace(input)
	out = angleBrackets.ReplaceAllString(out, "")
	out = jsProtocol.ReplaceAllString(out, "")
	out = eventHandler.ReplaceAllString(out, "")
	if utf8.RuneCountInString(out) > MaxSanitizedLength {
		out = string([]rune(out)[:MaxSanitizedLength])
	}
	return out
}

// SanitizeMap applies SanitizeInput to every string value of payload in place.
func SanitizeMap(payload map[string]interface{}) {
	for k, v := range payload {
		if s, ok := v.(string); ok {
			payload[k] = SanitizeInput(s)
		}
	}
}

// IsValidEmail applies the permissive address shape and the 254 byte limit.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email) && len(email) <= 254
}

// IsValidPhoneNumber accepts Egyptian mobile numbers with optional +20 or 0 prefix.
func IsValidPhoneNumber(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// Strength is the outcome of a password check.
type Strength struct {
	Valid    bool     `json:"valid"`
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

// PasswordStrength scores a password on five checks; four are required.
func PasswordStrength(password string) Strength {
	var feedback []string
	score := 0

	if len(password) < 8 {
		feedback = append(feedback, "Password must be at least 8 characters long")
	} else {
		score++
	}
	if lowerRegex.MatchString(password) {
		score++
	} else {
		feedback = append(feedback, "Include at least one lowercase letter")
	}
	if upperRegex.MatchString(password) {
		score++
	} else {
		feedback = append(feedback, "Include at least one uppercase letter")
	}
	if digitRegex.MatchString(password) {
		score++
	} else {
		feedback = append(feedback, "Include at least one number")
	}
	if specialRegex.MatchString(password) {
		score++
	} else {
		feedback = append(feedback, "Include at least one special character")
	}

	if len(feedback) == 0 {
		feedback = []string{"Strong password!"}
	}
	return Strength{Valid: score >= 4, Score: score, Feedback: feedback}
}

// GenerateSecureToken returns n random bytes hex encoded.
func GenerateSecureToken(n int) (string, error) {
	if n <= 0 {
		n = 32
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
