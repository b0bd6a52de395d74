package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateInviteCode generates a random invite code of the given length,
// drawn from an alphabet without easily-confused characters.
func GenerateInviteCode(length int) (string, error) {
	code := make([]byte, length)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}
