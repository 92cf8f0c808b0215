package passport

import (
	"errors"
	"fmt"
	"strings"
)

// TD3 is the two-line, 44-character machine readable zone printed on
// passport data pages.
const mrzLineLen = 44

var (
	ErrNoMRZ       = errors.New("no machine readable zone found")
	ErrCheckDigit  = errors.New("check digit mismatch")
	ErrMRZDocument = errors.New("machine readable zone is not a passport")
)

var checkWeights = [3]int{7, 3, 1}

// checkDigit computes the ICAO 9303 check digit of s. Filler '<' counts as
// zero, letters as 10-35.
func checkDigit(s string) byte {
	sum := 0
	for i := 0; i < len(s); i++ {
		var v int
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		}
		sum += v * checkWeights[i%3]
	}
	return byte('0' + sum%10)
}

func verify(field string, value string, digit byte) error {
	if checkDigit(value) != digit {
		return fmt.Errorf("%s %q: %w", field, value, ErrCheckDigit)
	}
	return nil
}

// normalizeMRZLine strips spaces OCR tends to insert and reports whether
// what remains only uses the MRZ alphabet.
func normalizeMRZLine(line string) (string, bool) {
	line = strings.ToUpper(strings.Join(strings.Fields(line), ""))
	if line == "" {
		return "", false
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '<') {
			return "", false
		}
	}
	return line, true
}

// findMRZ returns the first pair of consecutive TD3 lines in text.
func findMRZ(text string) (string, string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := 0; i+1 < len(lines); i++ {
		first, ok := normalizeMRZLine(lines[i])
		if !ok || len(first) != mrzLineLen || first[0] != 'P' {
			continue
		}
		second, ok := normalizeMRZLine(lines[i+1])
		if ok && len(second) == mrzLineLen {
			return first, second, nil
		}
	}
	return "", "", ErrNoMRZ
}

// ParseMRZ decodes a TD3 zone. The document number, birth date and expiry
// date check digits must all match.
func ParseMRZ(first, second string) (Fields, error) {
	if len(first) != mrzLineLen || len(second) != mrzLineLen {
		return Fields{}, fmt.Errorf("lines of %d and %d characters: %w", len(first), len(second), ErrNoMRZ)
	}
	if first[0] != 'P' {
		return Fields{}, fmt.Errorf("document code %q: %w", first[:2], ErrMRZDocument)
	}

	number, dob, expiry := second[0:9], second[13:19], second[21:27]
	if err := verify("document number", number, second[9]); err != nil {
		return Fields{}, err
	}
	if err := verify("date of birth", dob, second[19]); err != nil {
		return Fields{}, err
	}
	if err := verify("date of expiry", expiry, second[27]); err != nil {
		return Fields{}, err
	}

	surname, given, _ := strings.Cut(first[5:], "<<")

	return Fields{
		Number:       strings.TrimRight(number, "<"),
		Surname:      cleanName(strings.ReplaceAll(surname, "<", " ")),
		GivenNames:   cleanName(strings.ReplaceAll(given, "<", " ")),
		Nationality:  cleanNationality(strings.Trim(second[10:13], "<")),
		DateOfBirth:  standardizeDate(dob),
		Sex:          cleanSex(second[20:21]),
		DateOfExpiry: standardizeDate(expiry),
	}, nil
}
