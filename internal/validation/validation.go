package validation

import (
	"errors"
	"strings"
	"unicode"
)

const (
	// MinPageSize and MaxPageSize bound the news page size.
	MinPageSize = 1
	MaxPageSize = 10

	// MaxQueryLength caps a news query in runes.
	MaxQueryLength = 500
)

// ErrCityEmpty is returned when city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooShort is returned when city length is below the minimum.
var ErrCityTooShort = errors.New("city too short")

// ErrCityTooLong is returned when city length exceeds the maximum.
var ErrCityTooLong = errors.New("city too long")

// ErrCityInvalidChars is returned when city contains disallowed characters.
var ErrCityInvalidChars = errors.New("city contains invalid characters")

var (
	ErrQueryEmpty      = errors.New("query is required")
	ErrQueryTooLong    = errors.New("query too long")
	ErrLanguageInvalid = errors.New("language must be a two-letter code")
	ErrPageSizeRange   = errors.New("page_size must be between 1 and 10")
	ErrCurrencyEmpty   = errors.New("currency code is required")
	ErrCurrencyInvalid = errors.New("currency code must contain only letters")
)

// ValidateCity trims the input, enforces length bounds (minLen, maxLen in runes),
// and restricts to allowed characters: letters (Unicode), digits, space, comma,
// hyphen, period, apostrophe. Returns the trimmed string.
func ValidateCity(input string, minLen, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrCityEmpty
	}
	if minLen > 0 && n < minLen {
		return "", ErrCityTooShort
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrCityTooLong
	}
	for _, c := range r {
		if !isAllowedCityRune(c) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

func isAllowedCityRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}

// ValidateQuery trims a free-text news query and rejects empty or oversized input.
// Boolean operators such as OR are passed through untouched.
func ValidateQuery(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrQueryEmpty
	}
	if len([]rune(s)) > MaxQueryLength {
		return "", ErrQueryTooLong
	}
	return s, nil
}

// ValidateLanguage accepts exactly two ASCII letters and returns them lowercased.
// An empty input yields def.
func ValidateLanguage(input, def string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return def, nil
	}
	if len(s) != 2 {
		return "", ErrLanguageInvalid
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return "", ErrLanguageInvalid
		}
	}
	return strings.ToLower(s), nil
}

// ValidatePageSize enforces [MinPageSize, MaxPageSize].
func ValidatePageSize(n int) (int, error) {
	if n < MinPageSize || n > MaxPageSize {
		return 0, ErrPageSizeRange
	}
	return n, nil
}

// ValidateCurrency trims a currency code and rejects anything but ASCII letters.
// Blank input yields def. Case is preserved; the upstream decides whether a code exists.
func ValidateCurrency(input, def string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		s = def
	}
	if s == "" {
		return "", ErrCurrencyEmpty
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return "", ErrCurrencyInvalid
		}
	}
	return s, nil
}
