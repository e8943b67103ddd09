package utils

import (
	"crypto/rand" // Cryptographically secure randomness
	"math/big"    // Arbitrary-precision ints for rand.Int

	"golang.org/x/crypto/bcrypt" // Code hashing
)

// Alphabet for confirmation codes; unambiguous uppercase letters and digits
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of generated confirmation codes
const CodeLength = 6

// GenerateConfirmationCode returns a fresh random confirmation code
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, CodeLength) // Buffer for code characters
	for i := range buf {
		// Pick a random index into the alphabet
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err // Return error if randomness fails
		}
		buf[i] = codeAlphabet[n.Int64()] // Store the chosen character
	}
	return string(buf), nil // Return the code
}

// HashConfirmationCode hashes a confirmation code for storage
func HashConfirmationCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost) // Hash the code
	if err != nil {
		return "", err // Return error if hashing fails
	}
	return string(hash), nil // Return the hash
}

// CheckConfirmationCode compares a submitted code against the stored hash
func CheckConfirmationCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
