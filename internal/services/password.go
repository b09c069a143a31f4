package services

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLower   = "abcdefghijkmnopqrstuvwxyz"
	passwordUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordDigits  = "23456789"
	passwordSpecial = "!@#$%^&*"
)

// GenerateTemporaryPassword returns a random password containing at least one
// character from each class. Ambiguous characters (l, I, 0, O, 1) are left
// out since the admin relays the password out-of-band.
func GenerateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	all := passwordLower + passwordUpper + passwordDigits + passwordSpecial
	chars := make([]byte, 0, length)

	for _, set := range []string{passwordUpper, passwordLower, passwordDigits, passwordSpecial} {
		ch, err := randomChar(set)
		if err != nil {
			return "", err
		}
		chars = append(chars, ch)
	}
	for len(chars) < length {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, ch)
	}

	// Shuffle so the guaranteed classes are not always in front.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		chars[i], chars[j.Int64()] = chars[j.Int64()], chars[i]
	}

	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
