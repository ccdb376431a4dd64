package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Alphabet is a fixed set of runes a cleaned field may contain.
type Alphabet struct {
	extra string
}

const letters = "áéíóúÁÉÍÓÚñÑüÜ "

var (
	// NameAlphabet is used for names and objects.
	NameAlphabet = Alphabet{}

	// PlaceAlphabet additionally allows parentheses.
	PlaceAlphabet = Alphabet{extra: "()"}
)

// Allows reports whether r belongs to the alphabet.
func (a Alphabet) Allows(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case strings.ContainsRune(letters, r):
		return true
	}
	return strings.ContainsRune(a.extra, r)
}

// Filter drops every rune outside the alphabet and trims the result.
// Input is NFC-normalized first so decomposed accents survive.
func (a Alphabet) Filter(s string) string {
	s = norm.NFC.String(s)
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if a.Allows(r) {
			return r
		}
		return -1
	}, s))
}

// TitleWords capitalizes each whitespace-delimited word: first rune upper,
// remainder lower. Punctuation inside a word does not start a new one, so
// "(del" stays "(del". Runs of whitespace collapse to one space.
func TitleWords(s string) string {
	upper := cases.Upper(language.Spanish)
	lower := cases.Lower(language.Spanish)
	words := strings.Fields(s)
	for i, w := range words {
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// IsUpperText reports whether s is non-empty and made only of uppercase
// letters and spaces.
func IsUpperText(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if r != ' ' && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
