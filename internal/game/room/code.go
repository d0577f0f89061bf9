package room

import "github.com/cory-johannsen/snakeladder/internal/game/dice"

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CodeLength is the number of characters in a generated room code.
const CodeLength = 6

// GenerateCode produces a short human-shareable room code from src.
// Uniqueness is the caller's concern; the gateway retries against the
// registry until the code is unused.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a CodeLength-character uppercase base36 string.
func GenerateCode(src dice.Source) string {
	buf := make([]byte, CodeLength)
	for i := range buf {
		buf[i] = codeAlphabet[src.Intn(len(codeAlphabet))]
	}
	return string(buf)
}
