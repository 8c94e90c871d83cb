package parser

import (
	"strconv"
	"strings"

	"abigen/internal/abi"
	"abigen/internal/diag"
)

// parseInteger reads a literal with base prefix detection (0x, 0o, 0b,
// decimal) and an optional sign. A decimal literal with a leading zero is
// rejected rather than read as octal.
func parseInteger(tok token) (value uint64, negative bool, err error) {
	if legacyOctal(tok.text) {
		return 0, false, diag.Errorf(diag.SynInvalidInteger, tok.span, "invalid integer literal %q: leading zeros are not allowed, use 0o for octal", tok.text)
	}
	if strings.HasPrefix(tok.text, "-") {
		v, perr := strconv.ParseInt(tok.text, 0, 64)
		if perr != nil {
			return 0, false, diag.Errorf(diag.SynInvalidInteger, tok.span, "invalid integer literal %q", tok.text)
		}
		if v >= 0 {
			return uint64(v), false, nil
		}
		return uint64(v), true, nil
	}
	v, perr := strconv.ParseUint(strings.TrimPrefix(tok.text, "+"), 0, 64)
	if perr != nil {
		return 0, false, diag.Errorf(diag.SynInvalidInteger, tok.span, "invalid integer literal %q", tok.text)
	}
	return v, false, nil
}

// legacyOctal reports literals such as 010: a zero followed by more digits
// that are not all zero.
func legacyOctal(s string) bool {
	s = strings.TrimLeft(s, "+-")
	if len(s) < 2 || s[0] != '0' || s[1] < '0' || s[1] > '9' {
		return false
	}
	return strings.Trim(s, "0_") != ""
}

// parseCount reads a non-negative array length.
func parseCount(tok token) (uint64, error) {
	v, neg, err := parseInteger(tok)
	if err != nil {
		return 0, err
	}
	if neg {
		return 0, diag.Errorf(diag.SynInvalidInteger, tok.span, "negative array length %s", tok.text)
	}
	return v, nil
}

// parseValue reads "<literal> <name>" into a value of base.
func parseValue(d decl, base *abi.IntType) (*abi.Value, error) {
	v, neg, err := parseInteger(d.toks[0])
	if err != nil {
		return nil, err
	}
	val := &abi.Value{Name: d.word(1), Value: v, Negative: neg, Span: d.node.Span}
	if !base.Fits(val) {
		return nil, diag.Errorf(diag.SynInvalidValue, d.span(0), "value %s of %s does not fit in %s", d.word(0), val.Name, base.Name)
	}
	return val, nil
}
