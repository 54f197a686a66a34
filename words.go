package main

import "strings"

// mask renders the partially-revealed secret word: guessed letters are shown,
// unguessed letters become underscores, and every position is followed by a
// single space so clients can render the word letter-by-letter. A space in the
// word widens to two spaces, keeping multi-word secrets visually separated.
func mask(secret string, guessed map[rune]bool) string {
	var b strings.Builder

	for _, c := range secret {
		switch {
		case c == ' ':
			b.WriteString("  ")
		case guessed[c]:
			b.WriteRune(c)
			b.WriteByte(' ')
		default:
			b.WriteString("_ ")
		}
	}

	return strings.TrimSpace(b.String())
}

// isSolved reports whether every letter of the secret word has been guessed.
func isSolved(secret string, guessed map[rune]bool) bool {
	for _, c := range secret {
		if c == ' ' {
			continue
		}
		if !guessed[c] {
			return false
		}
	}

	return true
}

// isValidWord accepts uppercase A-Z and spaces only.
func isValidWord(word string) bool {
	if word == "" {
		return false
	}

	for _, c := range word {
		if c == ' ' {
			continue
		}
		if c < 'A' || c > 'Z' {
			return false
		}
	}

	return true
}

// isValidLetter accepts exactly one uppercase A-Z rune.
func isValidLetter(letter string) bool {
	runes := []rune(letter)

	return len(runes) == 1 && runes[0] >= 'A' && runes[0] <= 'Z'
}
