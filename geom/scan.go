package geom

import (
	"fmt"
	"strconv"
	"strings"
)

// scanner tokenizes the number lists found in path data, transform lists and point lists.
type scanner struct {
	s   string
	pos int
}

func (sc *scanner) done() bool {
	return sc.pos >= len(sc.s)
}

func (sc *scanner) peek() byte {
	if sc.done() {
		return 0
	}
	return sc.s[sc.pos]
}

func (sc *scanner) consume(c byte) bool {
	if sc.peek() == c && !sc.done() {
		sc.pos++
		return true
	}
	return false
}

func (sc *scanner) skipSpace() {
	for !sc.done() && isSpace(sc.s[sc.pos]) {
		sc.pos++
	}
}

// skipSep skips white space and at most one comma.
func (sc *scanner) skipSep() {
	sc.skipSpace()
	if sc.consume(',') {
		sc.skipSpace()
	}
}

func (sc *scanner) ident() string {
	start := sc.pos
	for !sc.done() {
		c := sc.s[sc.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			sc.pos++
			continue
		}
		break
	}
	return sc.s[start:sc.pos]
}

// number reads a floating point number in the SVG grammar, where "1.5.5"
// denotes the two numbers 1.5 and .5 and "1-2" the numbers 1 and -2.
func (sc *scanner) number() (float64, error) {
	start := sc.pos
	if c := sc.peek(); c == '+' || c == '-' {
		sc.pos++
	}
	digits := 0
	for !sc.done() && isDigit(sc.s[sc.pos]) {
		sc.pos++
		digits++
	}
	if sc.consume('.') {
		for !sc.done() && isDigit(sc.s[sc.pos]) {
			sc.pos++
			digits++
		}
	}
	if digits == 0 {
		sc.pos = start
		return 0, fmt.Errorf("expected number at offset %d", start)
	}
	if c := sc.peek(); c == 'e' || c == 'E' {
		mark := sc.pos
		sc.pos++
		if c := sc.peek(); c == '+' || c == '-' {
			sc.pos++
		}
		exp := 0
		for !sc.done() && isDigit(sc.s[sc.pos]) {
			sc.pos++
			exp++
		}
		if exp == 0 {
			sc.pos = mark
		}
	}
	v, err := strconv.ParseFloat(sc.s[start:sc.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q at offset %d", sc.s[start:sc.pos], start)
	}
	return v, nil
}

// flag reads an arc flag, which is a single 0 or 1 character.
func (sc *scanner) flag() (bool, error) {
	switch sc.peek() {
	case '0':
		sc.pos++
		return false, nil
	case '1':
		sc.pos++
		return true, nil
	}
	return false, fmt.Errorf("expected arc flag at offset %d", sc.pos)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatFloat formats v with at most precision decimals, trimming trailing zeros.
func FormatFloat(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// ParseNumbers parses a white space or comma separated list of numbers.
func ParseNumbers(s string) ([]float64, error) {
	sc := &scanner{s: s}
	var nums []float64
	for {
		sc.skipSep()
		if sc.done() {
			return nums, nil
		}
		v, err := sc.number()
		if err != nil {
			return nil, err
		}
		nums = append(nums, v)
	}
}
