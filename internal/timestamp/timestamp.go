// Package timestamp implements the spoken-timestamp grammar of spec §4.6:
// a recursive-descent parser over a recognizer's English transcript that
// extracts a calendar instant plus any residual words.
package timestamp

import (
	"strconv"
	"strings"
	"time"

	"github.com/diffusor/talkytime/internal/domainerr"
)

// Result is the grammar's output: the parsed instant, any leftover words
// (the user's spoken notes), and whether the transcript's stated weekday
// disagreed with the one computed from the parsed date.
type Result struct {
	DateTime       time.Time
	Extra          []string
	WeekdayWarning bool
}

// substitutions tolerate the recognizer's known confusions (spec §4.6):
// "why" is heard for "one", "oh" for "zero".
var substitutions = map[string]string{
	"why": "one",
	"oh":  "zero",
}

var onesWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14, "fifteenth": 15,
	"sixteenth": 16, "seventeenth": 17, "eighteenth": 18, "nineteenth": 19,
	"twentieth": 20, "thirtieth": 30,
}

var monthWords = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var weekdayWords = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

type parser struct {
	toks []string
	pos  int
}

func newParser(transcript string) *parser {
	fields := strings.Fields(strings.ToLower(transcript))
	toks := make([]string, len(fields))
	for i, f := range fields {
		if sub, ok := substitutions[f]; ok {
			toks[i] = sub
		} else {
			toks[i] = f
		}
	}
	return &parser{toks: toks}
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *parser) peekAt(off int) (string, bool) {
	i := p.pos + off
	if i < 0 || i >= len(p.toks) {
		return "", false
	}
	return p.toks[i], true
}

func (p *parser) next() (string, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) consumeIf(words ...string) bool {
	tok, ok := p.peek()
	if !ok {
		return false
	}
	for _, w := range words {
		if tok == w {
			p.pos++
			return true
		}
	}
	return false
}

func (p *parser) rest() []string {
	if p.pos >= len(p.toks) {
		return nil
	}
	out := make([]string, len(p.toks)-p.pos)
	copy(out, p.toks[p.pos:])
	return out
}

// parseDigitPair implements spec §4.6's "digit pair": a leading number
// optionally joined with a second number when the first is either 0 or
// >=20 and the second is <10.
func (p *parser) parseDigitPair() (int, bool) {
	tok, ok := p.peek()
	if !ok {
		return 0, false
	}
	n1, ok := onesWords[tok]
	if !ok {
		n1, ok = tensWords[tok]
	}
	if !ok {
		return 0, false
	}
	p.pos++

	if n1 == 0 || n1 >= 20 {
		if tok2, ok2 := p.peek(); ok2 {
			if n2, ok3 := onesWords[tok2]; ok3 && n2 < 10 {
				p.pos++
				return n1 + n2, true
			}
		}
	}
	return n1, true
}

func isSecondWord(tok string) bool { return tok == "second" || tok == "seconds" }
func isMinuteWord(tok string) bool { return tok == "minute" || tok == "minutes" }

func (p *parser) consumeHourConnectives() {
	if p.consumeIf("hundred", "hour", "hours", "oclock") {
		return
	}
	if tok, ok := p.peek(); ok && tok == "zero" {
		if next, ok2 := p.peekAt(1); ok2 && next == "clock" {
			p.pos += 2
		}
	}
}

// parseConnectedPart optionally consumes a leading "and", then a digit
// pair, then a trailing connective word satisfying isConnective.
func (p *parser) parseConnectedPart(isConnective func(string) bool) (int, bool) {
	save := p.pos
	p.consumeIf("and")
	n, ok := p.parseDigitPair()
	if !ok {
		p.pos = save
		return 0, false
	}
	if tok, ok2 := p.peek(); ok2 && isConnective(tok) {
		p.pos++
	}
	return n, true
}

// parseTimePhrase implements spec §4.6's time grammar, including the
// stray-connective demotions.
func (p *parser) parseTimePhrase() (h, m, s int, err error) {
	d1, ok := p.parseDigitPair()
	if !ok {
		return 0, 0, 0, domainerr.ErrTimestampGrok("expected a time phrase")
	}

	if tok, ok2 := p.peek(); ok2 && isSecondWord(tok) {
		p.pos++
		return 0, 0, d1, nil
	}
	if tok, ok2 := p.peek(); ok2 && isMinuteWord(tok) {
		p.pos++
		sec, _ := p.parseConnectedPart(isSecondWord)
		return 0, d1, sec, nil
	}

	h = d1
	p.consumeHourConnectives()

	min, hasMin := p.parseConnectedPart(isMinuteWord)
	if !hasMin {
		return h, 0, 0, nil
	}
	sec, _ := p.parseConnectedPart(isSecondWord)
	return h, min, sec, nil
}

func (p *parser) tryConsumeWeekday() (time.Weekday, bool) {
	tok, ok := p.peek()
	if !ok {
		return 0, false
	}
	wd, ok := weekdayWords[tok]
	if ok {
		p.pos++
	}
	return wd, ok
}

func (p *parser) tryConsumeMonth() (time.Month, error) {
	tok, ok := p.peek()
	if !ok {
		return 0, domainerr.ErrTimestampGrok("expected a month name, found end of transcript")
	}
	m, ok := monthWords[tok]
	if !ok {
		return 0, domainerr.ErrTimestampGrok("expected a month name, found %q", tok)
	}
	p.pos++
	return m, nil
}

func (p *parser) parseDayOfMonth() (int, error) {
	tok, ok := p.peek()
	if !ok {
		return 0, domainerr.ErrTimestampGrok("expected a day of month, found end of transcript")
	}

	if day, ok := ordinalWords[tok]; ok {
		p.pos++
		return day, nil
	}

	if day, ok := parseOrdinalDigits(tok); ok {
		p.pos++
		return day, nil
	}

	if tens, ok := tensWords[tok]; ok {
		if next, ok2 := p.peekAt(1); ok2 {
			if ones, ok3 := ordinalWords[next]; ok3 && ones < 10 {
				p.pos += 2
				return tens + ones, nil
			}
		}
	}

	return 0, domainerr.ErrTimestampGrok("expected a day-of-month ordinal, found %q", tok)
}

func parseOrdinalDigits(tok string) (int, bool) {
	suffixes := []string{"st", "nd", "rd", "th"}
	for _, suf := range suffixes {
		if strings.HasSuffix(tok, suf) {
			numPart := strings.TrimSuffix(tok, suf)
			if n, err := strconv.Atoi(numPart); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// parseYear implements spec §4.6's two year forms.
func (p *parser) parseYear() (int, error) {
	if tok, ok := p.peek(); ok {
		if n, ok2 := map[string]int{"one": 1, "two": 2, "three": 3}[tok]; ok2 {
			if next, ok3 := p.peekAt(1); ok3 && next == "thousand" {
				p.pos += 2
				p.consumeIf("and")
				remainder := p.parseYearRemainder()
				year := n*1000 + remainder
				return validateYear(year)
			}
		}
	}

	firstTwo, ok := p.parseDigitPair()
	if !ok || firstTwo < 19 || firstTwo > 29 {
		return 0, domainerr.ErrTimestampGrok("expected a year phrase")
	}
	hadHundred := p.consumeIf("hundred")
	p.consumeIf("and")
	tail, hasTail := p.parseDigitPair()
	if !hadHundred && !hasTail {
		return 0, domainerr.ErrTimestampGrok("year phrase missing two-digit tail")
	}
	year := firstTwo*100 + tail
	return validateYear(year)
}

// parseYearRemainder parses the hundreds/tens/ones portion after
// "<N> thousand [and]", defaulting to 0 when absent.
func (p *parser) parseYearRemainder() int {
	n1, ok := p.parseDigitPair()
	if !ok {
		return 0
	}
	if p.consumeIf("hundred") {
		p.consumeIf("and")
		tail, _ := p.parseDigitPair()
		return n1*100 + tail
	}
	return n1
}

func validateYear(year int) (int, error) {
	if year < 1900 || year > 2999 {
		return 0, domainerr.ErrTimestampGrok("year %d out of accepted range 1900..2999", year)
	}
	return year, nil
}

// Parse runs the full grammar over transcript: a time phrase followed by
// a date phrase (spec §4.6).
func Parse(transcript string) (Result, error) {
	p := newParser(transcript)

	h, m, s, err := p.parseTimePhrase()
	if err != nil {
		return Result{}, err
	}

	weekday1, hasWeekday1 := p.tryConsumeWeekday()
	month, err := p.tryConsumeMonth()
	if err != nil {
		return Result{}, err
	}
	day, err := p.parseDayOfMonth()
	if err != nil {
		return Result{}, err
	}
	weekday2, hasWeekday2 := p.tryConsumeWeekday()
	year, err := p.parseYear()
	if err != nil {
		return Result{}, err
	}

	dt := time.Date(year, month, day, h, m, s, 0, time.UTC)

	var warn bool
	if hasWeekday1 && weekday1 != dt.Weekday() {
		warn = true
	} else if hasWeekday2 && weekday2 != dt.Weekday() {
		warn = true
	}

	return Result{DateTime: dt, Extra: p.rest(), WeekdayWarning: warn}, nil
}

// CanonicalLiteral reformats dt the way a reparse would need to reproduce
// it exactly, for the grammar-idempotence property (spec §8 invariant 7):
// YYYYMMDD-HHMMSS.
func CanonicalLiteral(dt time.Time) string {
	return dt.Format("20060102-150405")
}
