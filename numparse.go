package basic

import "math"

// SkipWS advances past run of spaces (only the ASCII space character;
// tabs and other whitespace are not stripped, matching the host dialect).
func SkipWS(s string) string {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

// SkipToEndStatement advances to the next ':' statement separator or end
// of line, whichever comes first.
func SkipToEndStatement(s string) string {
	i := 0
	for i < len(s) && s[i] != ':' {
		i++
	}
	return s[i:]
}

// ParseUint16 parses a run of digits (tolerating embedded spaces between
// them) as an unsigned 16-bit value, failing with errNotFound if there is
// no digit at all and with Syntax on overflow past 65535.
func ParseUint16(s string) (rest string, val uint16, err error) {
	p := s
	result := uint(0)
	matched := false
	for {
		p = SkipWS(p)
		if len(p) == 0 || p[0] < '0' || p[0] > '9' {
			break
		}
		if result >= 10000 {
			return s, 0, Err(Syntax)
		}
		result *= 10
		d := uint(p[0] - '0')
		if 65535-d < result {
			return s, 0, Err(Syntax)
		}
		result += d
		p = p[1:]
		matched = true
	}
	if !matched {
		return s, 0, errNotFound
	}
	return p, uint16(result), nil
}

// ParseFloat implements the host dialect's own float scanner rather than
// relying on strconv: whitespace may appear anywhere inside the number,
// and the exponent's sign is a tokenized +/- opcode byte, not a literal
// ASCII character.
func ParseFloat(s string) (rest string, val float32, err error) {
	p := s
	var v float32
	scale := 0

	for len(p) > 0 && p[0] >= '0' && p[0] <= '9' {
		v = v*10 + float32(p[0]-'0')
		p = p[1:]
		p = SkipWS(p)
	}

	if len(p) > 0 && p[0] == '.' {
		p = p[1:]
		p = SkipWS(p)
		for len(p) > 0 && p[0] >= '0' && p[0] <= '9' {
			v = v*10 + float32(p[0]-'0')
			scale--
			p = p[1:]
			p = SkipWS(p)
		}
	}

	if len(p) > 0 && (p[0] == 'e' || p[0] == 'E') {
		p = p[1:]
		p = SkipWS(p)
		sign := 1
		if len(p) > 0 && p[0] == byte(KwPlus) {
			p = p[1:]
			p = SkipWS(p)
		} else if len(p) > 0 && p[0] == byte(KwMinus) {
			sign = -1
			p = p[1:]
			p = SkipWS(p)
		}
		rest2, e, eerr := ParseUint16(p)
		if eerr != nil && !isNotFound(eerr) {
			return s, 0, eerr
		}
		if eerr == nil {
			p = rest2
			scale += sign * int(e)
		}
	}

	v *= float32(math.Pow(10, float64(scale)))
	if math.IsNaN(float64(v)) {
		return s, 0, Err(Parameter)
	}
	if math.IsInf(float64(v), 0) {
		return s, 0, Err(Overflow)
	}
	return p, v, nil
}

// ParseVarName parses one letter, optionally followed by one digit,
// tolerating embedded whitespace (spec §4.3).
func ParseVarName(s string) (rest string, name VarName, err error) {
	if len(s) == 0 || !isAlpha(s[0]) {
		return s, 0, Err(Syntax)
	}
	letter := s[0]
	p := SkipWS(s[1:])
	var digit byte
	if len(p) > 0 && p[0] >= '0' && p[0] <= '9' {
		digit = p[0]
		p = SkipWS(p[1:])
	}
	return p, PackVarName(letter, digit), nil
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
