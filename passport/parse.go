// Package passport extracts identity fields from the text of a passport
// data page: the machine readable zone when present, labelled lines
// otherwise.
package passport

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fields holds what could be read from a data page. Dates are dd/mm/yyyy.
// Empty means not found.
type Fields struct {
	Number           string
	Surname          string
	GivenNames       string
	Nationality      string
	DateOfBirth      string
	PlaceOfBirth     string
	Sex              string
	DateOfIssue      string
	DateOfExpiry     string
	IssuingAuthority string
}

func (f Fields) IsZero() bool {
	return f == Fields{}
}

func (f Fields) FullName() string {
	return strings.TrimSpace(f.GivenNames + " " + f.Surname)
}

// merge fills the empty fields of f from other.
func (f *Fields) merge(other Fields) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&f.Number, other.Number)
	fill(&f.Surname, other.Surname)
	fill(&f.GivenNames, other.GivenNames)
	fill(&f.Nationality, other.Nationality)
	fill(&f.DateOfBirth, other.DateOfBirth)
	fill(&f.PlaceOfBirth, other.PlaceOfBirth)
	fill(&f.Sex, other.Sex)
	fill(&f.DateOfIssue, other.DateOfIssue)
	fill(&f.DateOfExpiry, other.DateOfExpiry)
	fill(&f.IssuingAuthority, other.IssuingAuthority)
}

// Parse reads text from a passport data page. A valid machine readable
// zone wins; labelled lines fill whatever it does not carry.
func Parse(text string) Fields {
	var fields Fields

	if first, second, err := findMRZ(text); err == nil {
		fields, err = ParseMRZ(first, second)
		if err != nil {
			slog.Warn("ignoring machine readable zone", "error", err)
		}
	}

	fields.merge(parseLabels(text))
	return fields
}

type labelRule struct {
	re    *regexp.Regexp
	clean func(string) string
	set   func(*Fields, string)
}

func label(names string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:` + names + `)[ \t]*[:\-]?[ \t]*(\S.*?)[ \t]*$`)
}

var labelRules = []labelRule{
	{label(`passport\s+(?:no\.?|number)|document\s+(?:no\.?|number)`), cleanNumber, func(f *Fields, v string) { f.Number = v }},
	{label(`surname|family\s+name`), cleanName, func(f *Fields, v string) { f.Surname = v }},
	{label(`given\s+names?|first\s+names?`), cleanName, func(f *Fields, v string) { f.GivenNames = v }},
	{label(`nationality|country\s+code`), cleanNationality, func(f *Fields, v string) { f.Nationality = v }},
	{label(`date\s+of\s+birth|dob`), standardizeDate, func(f *Fields, v string) { f.DateOfBirth = v }},
	{label(`place\s+of\s+birth|born\s+in`), cleanText, func(f *Fields, v string) { f.PlaceOfBirth = v }},
	{label(`sex|gender`), cleanSex, func(f *Fields, v string) { f.Sex = v }},
	{label(`date\s+of\s+issue|issued`), standardizeDate, func(f *Fields, v string) { f.DateOfIssue = v }},
	{label(`date\s+of\s+expiry|expires?|valid\s+until`), standardizeDate, func(f *Fields, v string) { f.DateOfExpiry = v }},
	{label(`issuing\s+authority|authority`), cleanText, func(f *Fields, v string) { f.IssuingAuthority = v }},
}

// parseLabels reads "Label: value" lines. The first usable line per field
// wins.
func parseLabels(text string) Fields {
	var fields Fields
	for _, rule := range labelRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			if v := rule.clean(m[1]); v != "" {
				rule.set(&fields, v)
				break
			}
		}
	}
	return fields
}

var (
	nonNameChars   = regexp.MustCompile(`[^A-Za-z\s]`)
	nonNumberChars = regexp.MustCompile(`[^A-Z0-9]`)
)

// title is built per call; a Caser must not be shared between goroutines.
func title(s string) string {
	return cases.Title(language.Und).String(s)
}

// ascii folds accents and drops whatever has no ASCII form, so values can
// travel as object metadata.
func ascii(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || unicode.IsControl(r) {
			return -1
		}
		return r
	}, norm.NFKD.String(s))
}

func cleanName(s string) string {
	s = nonNameChars.ReplaceAllString(ascii(s), "")
	return title(strings.Join(strings.Fields(s), " "))
}

func cleanNumber(s string) string {
	s = nonNumberChars.ReplaceAllString(strings.ToUpper(s), "")
	if len(s) < 6 || len(s) > 12 {
		return ""
	}
	return s
}

func cleanText(s string) string {
	s = strings.NewReplacer("<", " ", ">", " ").Replace(ascii(s))
	return strings.Join(strings.Fields(s), " ")
}

func cleanSex(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch {
	case s == "M" || s == "MALE":
		return "M"
	case s == "F" || s == "FEMALE":
		return "F"
	}
	return ""
}

var countryNames = map[string]string{
	"USA": "United States",
	"GBR": "United Kingdom",
	"CAN": "Canada",
	"AUS": "Australia",
	"DEU": "Germany",
	"FRA": "France",
	"IND": "India",
	"CHN": "China",
	"JPN": "Japan",
	"RUS": "Russia",
}

func cleanNationality(s string) string {
	s = strings.ToUpper(cleanText(s))
	if name, ok := countryNames[s]; ok {
		return name
	}
	return title(s)
}

const dateLayout = "02/01/2006"

// Day-first layouts are tried before month-first ones.
var dateLayouts = []string{"2/1/2006", "1/2/2006", "2-1-2006", "1-2-2006", "2.1.2006", "2006-1-2", "2006/1/2", "2 Jan 2006"}

// standardizeDate renders s as dd/mm/yyyy, or returns "" when s is not a
// date. Six digits are read as the MRZ YYMMDD form with years up to 30 in
// this century.
func standardizeDate(s string) string {
	s = cleanText(s)
	if s == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}

	if len(s) == 6 && strings.Trim(s, "0123456789") == "" {
		century := "19"
		if s[:2] <= "30" {
			century = "20"
		}
		if t, err := time.Parse("20060102", century+s); err == nil {
			return t.Format(dateLayout)
		}
	}
	return ""
}
