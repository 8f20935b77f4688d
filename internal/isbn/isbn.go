// Package isbn classifies, validates, and converts scanned book codes.
// It handles ISBN-10, ISBN-13 (Bookland EAN), and UPC-A barcodes.
package isbn

import (
	"fmt"
	"strings"
)

// Kind is the recognized class of a scanned code.
type Kind int

const (
	KindUnknown Kind = iota
	KindISBN10
	KindISBN13
	KindUPC
)

func (k Kind) String() string {
	switch k {
	case KindISBN10:
		return "isbn10"
	case KindISBN13:
		return "isbn13"
	case KindUPC:
		return "upc"
	default:
		return "unknown"
	}
}

// Normalize strips spaces and hyphens and upper-cases a trailing x.
// Scanners and manual entry both produce hyphenated or padded codes.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return strings.ToUpper(code)
}

// Classify reports what kind of code a normalized string looks like.
// A 13-digit code with a 978/979 prefix is an ISBN-13, a 10-character
// code ending in a digit or X is an ISBN-10, any other digit string is
// treated as a UPC.
func Classify(code string) Kind {
	switch {
	case len(code) == 13 && allDigits(code) &&
		(strings.HasPrefix(code, "978") || strings.HasPrefix(code, "979")):
		return KindISBN13
	case len(code) == 10 && allDigits(code[:9]) &&
		(code[9] == 'X' || isDigit(code[9])):
		return KindISBN10
	case len(code) >= 8 && allDigits(code):
		return KindUPC
	default:
		return KindUnknown
	}
}

// To10 converts an ISBN-13 to its ISBN-10 form: drop the 3-digit EAN
// prefix and the ISBN-13 check digit, then recompute the ISBN-10 check
// digit over the nine core digits (position-weighted sum mod 11, with
// 10 written as X).
func To10(isbn13 string) (string, error) {
	if Classify(isbn13) != KindISBN13 {
		return "", fmt.Errorf("not an ISBN-13: %q", isbn13)
	}
	core := isbn13[3 : len(isbn13)-1]

	total := 0
	for i, r := range core {
		total += (i + 1) * int(r-'0')
	}

	check := total % 11
	if check == 10 {
		return core + "X", nil
	}
	return core + fmt.Sprintf("%d", check), nil
}

// Valid10 reports whether an ISBN-10 has a correct check digit.
func Valid10(code string) bool {
	if Classify(code) != KindISBN10 {
		return false
	}
	total := 0
	for i := 0; i < 9; i++ {
		total += (i + 1) * int(code[i]-'0')
	}
	if code[9] == 'X' {
		total += 10 * 10
	} else {
		total += 10 * int(code[9]-'0')
	}
	return total%11 == 0
}

// Valid13 reports whether an ISBN-13 has a correct EAN-13 check digit.
func Valid13(code string) bool {
	if Classify(code) != KindISBN13 {
		return false
	}
	return ean13Checksum(code[:12]) == int(code[12]-'0')
}

// ValidUPCA reports whether a 12-digit UPC-A has a correct check digit.
func ValidUPCA(code string) bool {
	if len(code) != 12 || !allDigits(code) {
		return false
	}
	sum := 0
	for i := 0; i < 11; i++ {
		d := int(code[i] - '0')
		if i%2 == 0 {
			sum += 3 * d
		} else {
			sum += d
		}
	}
	return (10-sum%10)%10 == int(code[11]-'0')
}

// ean13Checksum computes the EAN-13 check digit for 12 leading digits.
func ean13Checksum(digits string) int {
	sum := 0
	for i, r := range digits {
		d := int(r - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return (10 - sum%10) % 10
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return len(s) > 0
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
