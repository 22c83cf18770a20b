package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jiraview/internal/shared"
)

// DefaultPivot is the two-digit year pivot: 51..99 map to 1951..1999, 00..50 to 2000..2050.
const DefaultPivot = 50

var (
	isoPattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ].*)?$`)
	splitPattern = regexp.MustCompile(`[/\-\s]+`)
	digits       = regexp.MustCompile(`^\d+$`)
)

var monthNames = map[string]time.Month{
	"ene": time.January, "enero": time.January,
	"feb": time.February, "febrero": time.February,
	"mar": time.March, "marzo": time.March,
	"abr": time.April, "abril": time.April,
	"may": time.May, "mayo": time.May,
	"jun": time.June, "junio": time.June,
	"jul": time.July, "julio": time.July,
	"ago": time.August, "agosto": time.August,
	"sep": time.September, "sept": time.September, "set": time.September,
	"septiembre": time.September, "setiembre": time.September,
	"oct": time.October, "octubre": time.October,
	"nov": time.November, "noviembre": time.November,
	"dic": time.December, "diciembre": time.December,
}

// Date is a calendar day with no time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Format renders the date as DD/MM/YYYY.
func (d Date) Format() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// MonthIndex returns the 0-based month.
func (d Date) MonthIndex() int {
	return int(d.Month) - 1
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Parser parses date strings with a configurable two-digit year pivot.
// Two-digit years above Pivot are 19yy, the rest 20yy. Use NewParser to
// get range checking.
type Parser struct {
	Pivot int
}

// NewParser returns a parser with the given pivot; a pivot outside 0..99 selects DefaultPivot.
func NewParser(pivot int) Parser {
	if pivot < 0 || pivot > 99 {
		pivot = DefaultPivot
	}
	return Parser{Pivot: pivot}
}

var defaultParser = Parser{Pivot: DefaultPivot}

// Parse parses text with the default pivot.
func Parse(text string) (Date, bool) { return defaultParser.Parse(text) }

// ParseLeading parses text with the default pivot, retrying on its first whitespace token.
func ParseLeading(text string) (Date, bool) { return defaultParser.ParseLeading(text) }

// YearOf returns the year of text with the default pivot.
func YearOf(text string) (int, bool) { return defaultParser.YearOf(text) }

// MonthOf returns the 0-based month of text with the default pivot.
func MonthOf(text string) (int, bool) { return defaultParser.MonthOf(text) }

// Parse resolves text into a calendar date.
func (p Parser) Parse(text string) (Date, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Date{}, false
	}

	if m := isoPattern.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return build(y, mo, d)
	}

	folded := " " + shared.Fold(text) + " "
	folded = strings.ReplaceAll(folded, " de ", " ")

	var tokens []string
	for _, tok := range splitPattern.Split(folded, -1) {
		tok = strings.TrimSuffix(tok, ".")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) != 3 {
		return Date{}, false
	}

	if !digits.MatchString(tokens[0]) || len(tokens[0]) > 2 {
		return Date{}, false
	}
	day, _ := strconv.Atoi(tokens[0])

	month, ok := parseMonth(tokens[1])
	if !ok {
		return Date{}, false
	}

	year, ok := p.parseYear(tokens[2])
	if !ok {
		return Date{}, false
	}

	return build(year, month, day)
}

// ParseLeading tries the whole text first and then its first whitespace
// separated token, so "15/03/2023 10:22" resolves to 15/03/2023.
func (p Parser) ParseLeading(text string) (Date, bool) {
	if d, ok := p.Parse(text); ok {
		return d, true
	}
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return Date{}, false
	}
	return p.Parse(fields[0])
}

// YearOf returns the year of text. A trailing time of day is ignored.
func (p Parser) YearOf(text string) (int, bool) {
	d, ok := p.ParseLeading(text)
	if !ok {
		return 0, false
	}
	return d.Year, true
}

// MonthOf returns the 0-based month of text. A trailing time of day is ignored.
func (p Parser) MonthOf(text string) (int, bool) {
	d, ok := p.ParseLeading(text)
	if !ok {
		return 0, false
	}
	return d.MonthIndex(), true
}

func parseMonth(tok string) (int, bool) {
	if digits.MatchString(tok) {
		if len(tok) > 2 {
			return 0, false
		}
		m, _ := strconv.Atoi(tok)
		return m, m >= 1 && m <= 12
	}
	m, ok := monthNames[tok]
	return int(m), ok
}

func (p Parser) parseYear(tok string) (int, bool) {
	if !digits.MatchString(tok) {
		return 0, false
	}
	y, _ := strconv.Atoi(tok)
	switch len(tok) {
	case 4:
		return y, true
	case 2:
		if y > p.Pivot {
			return 1900 + y, true
		}
		return 2000 + y, true
	default:
		return 0, false
	}
}

func build(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}
