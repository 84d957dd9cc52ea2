package crypto

import (
	"fmt"
	"regexp"
)

// InviteCodeLength is the number of characters in a tontine invite code.
const InviteCodeLength = 6

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// GenerateInviteCode returns a random uppercase alphanumeric invite code.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLength)
	if _, err := randomRead(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}

	code := make([]byte, InviteCodeLength)
	for i, b := range buf {
		code[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(code), nil
}

// IsValidInviteCode reports whether code matches ^[A-Z0-9]{6}$.
func IsValidInviteCode(code string) bool {
	return inviteCodePattern.MatchString(code)
}
