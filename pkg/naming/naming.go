package naming

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Convention is an identifier style.
type Convention int

const (
	Camel Convention = iota + 1
	Underscore
	Hyphen
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Convert rewrites value from one convention to another.
func Convert(from, to Convention, value string) (string, error) {
	if value == "" {
		return value, nil
	}

	words, err := split(from, value)
	if err != nil {
		return "", err
	}

	switch to {
	case Camel:
		var sb strings.Builder
		for _, w := range words {
			sb.WriteString(mapFirst(upper, w))
		}
		return sb.String(), nil
	case Underscore, Hyphen:
		sep := "_"
		if to == Hyphen {
			sep = "-"
		}
		for i, w := range words {
			words[i] = mapFirst(lower, w)
		}
		return strings.Join(words, sep), nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownConvention, to)
	}
}

// Controller maps a URL segment to a registry controller name.
func Controller(segment string) string {
	name, _ := Convert(Hyphen, Camel, segment)
	return name
}

// Action maps a URL segment to a registry action name.
func Action(segment string) string {
	return strings.ReplaceAll(segment, "-", "_")
}

func split(from Convention, value string) ([]string, error) {
	var (
		words []string
		cur   strings.Builder
	)
	flush := func() {
		words = append(words, cur.String())
		cur.Reset()
	}

	switch from {
	case Camel:
		for i, r := range value {
			if i > 0 && unicode.IsUpper(r) {
				flush()
			}
			cur.WriteRune(r)
		}
	case Underscore, Hyphen:
		sep := '_'
		if from == Hyphen {
			sep = '-'
		}
		runes := []rune(value)
		for i, r := range runes {
			if r == sep && i+1 < len(runes) && isLetter(runes[i+1]) {
				flush()
				continue
			}
			cur.WriteRune(r)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownConvention, from)
	}

	flush()
	return words, nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func mapFirst(c cases.Caser, w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return c.String(string(r)) + w[size:]
}
