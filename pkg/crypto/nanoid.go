package crypto

import (
	"crypto/rand"
	"math"
)

const (
	defaultAlphabet string = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	defaultSize     int    = 22 // 22 * 6 = 132 bits (uuid is 128 bits) of entropy
	maxAlphabetSize int    = 255
)

// NanoIDGenerator produces URL-safe random identifiers. Used for the jti
// claim of access tokens.
type NanoIDGenerator struct {
	alphabet string
	mask     int
	size     int
}

func getMask(alphabetLen int) int {
	for i := 1; i <= 8; i++ {
		mask := (2 << uint(i)) - 1
		if mask > alphabetLen-1 {
			return mask
		}
	}
	return maxAlphabetSize
}

// NewNanoID returns a generator over the default URL-safe alphabet.
func NewNanoID() *NanoIDGenerator {
	return &NanoIDGenerator{
		alphabet: defaultAlphabet,
		mask:     getMask(len(defaultAlphabet)),
		size:     defaultSize,
	}
}

func (n *NanoIDGenerator) Generate() (string, error) {
	alphabetLen := len(n.alphabet)
	step := int(math.Ceil(1.6 * float64(n.mask*n.size) / float64(alphabetLen)))

	id := make([]byte, n.size)
	buffer := make([]byte, step)

	for position := 0; position < n.size; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}

		for i := 0; i < step && position < n.size; i++ {
			index := buffer[i] & byte(n.mask)

			// Rejection sampling keeps the distribution uniform
			if int(index) < alphabetLen {
				id[position] = n.alphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}
