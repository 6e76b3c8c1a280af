package socmap

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is a fatal error: a declaration line carried a token that is not
// a valid hexadecimal number.
type ParseError struct {
	Pos   Position
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid hexadecimal literal %q: %v", e.Pos, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseHex parses a hexadecimal literal. An optional 0x/0X prefix and
// underscores between digits are accepted; signs are not.
func ParseHex(tok string) (uint64, error) {
	s := tok
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		if strings.HasPrefix(s, "_") {
			return 0, strconv.ErrSyntax
		}
		s = "0x" + s
	}
	// base 0 is the only mode in which strconv accepts underscores; the
	// prefix forced above pins it to hexadecimal.
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			return 0, ne.Err
		}
		return 0, err
	}
	return v, nil
}

// FormatHex renders v as lowercase hex digits, zero-padded to at least
// minDigits and grouped in fours from the right with underscores.
// FormatHex(0x1000, 8) == "0000_1000".
func FormatHex(v uint64, minDigits int) string {
	digits := strconv.FormatUint(v, 16)
	if len(digits) < minDigits {
		digits = strings.Repeat("0", minDigits-len(digits)) + digits
	}
	var b strings.Builder
	lead := len(digits) % 4
	if lead == 0 {
		lead = 4
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 4 {
		b.WriteByte('_')
		b.WriteString(digits[i : i+4])
	}
	return b.String()
}
