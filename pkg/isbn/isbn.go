package isbn

import (
	"strconv"
	"strings"
)

// Normalize strips separators from an ISBN and upper-cases a trailing x.
// It does not validate check digits.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		}
	}
	return b.String()
}

// Valid reports whether s, once normalized, is a well-formed ISBN-10 or ISBN-13
// with a correct check digit.
func Valid(s string) bool {
	n := Normalize(s)
	switch len(n) {
	case 10:
		return To13(n) != "" && To10(To13(n)) == n
	case 13:
		if strings.ContainsRune(n, 'X') {
			return false
		}
		return check13(n[:12]) == n[12:]
	}
	return false
}

// Unique normalizes every entry of list, drops empty ones and duplicates,
// and keeps the first occurrence order.
func Unique(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		n := Normalize(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// To13 converts an ISBN-10 to ISBN-13 by prepending 978 and computing the check digit.
// Returns an empty string if the input is not a valid ISBN-10.
func To13(isbn10 string) string {
	if len(isbn10) != 10 {
		return ""
	}
	base := "978" + isbn10[:9]
	check := check13(base)
	if check == "" {
		return ""
	}
	return base + check
}

func check13(base string) string {
	sum := 0
	for i, c := range base {
		d, err := strconv.Atoi(string(c))
		if err != nil {
			return ""
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return strconv.Itoa((10 - sum%10) % 10)
}

// To10 converts a 978-prefixed ISBN-13 to ISBN-10.
// Returns an empty string if the input is not a convertible ISBN-13.
func To10(isbn13 string) string {
	if len(isbn13) != 13 || !strings.HasPrefix(isbn13, "978") {
		return ""
	}
	base := isbn13[3:12]
	sum := 0
	for i, c := range base {
		d, err := strconv.Atoi(string(c))
		if err != nil {
			return ""
		}
		sum += d * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return base + "X"
	}
	return base + strconv.Itoa(check)
}
