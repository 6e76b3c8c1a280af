package socmap

import "strings"

// Keyword is a declaration keyword of the map grammar
type Keyword uint8

const (
	KwInvalid Keyword = iota
	KwVal
	KwMem
	KwIO
)

// keywords maps the upper-cased spelling to the keyword and the token count
// of a well-formed declaration line.
var keywords = map[string]struct {
	kw    Keyword
	arity int
}{
	"VAL": {KwVal, 3},
	"MEM": {KwMem, 4},
	"IO":  {KwIO, 4},
}

// LookupKeyword canonicalizes word case-insensitively.
// It returns KwInvalid and 0 for anything that is not a keyword.
func LookupKeyword(word string) (Keyword, int) {
	e, ok := keywords[strings.ToUpper(word)]
	if !ok {
		return KwInvalid, 0
	}
	return e.kw, e.arity
}

// RegionKind returns the region kind declared by kw.
func (kw Keyword) RegionKind() (Kind, bool) {
	switch kw {
	case KwMem:
		return KindMem, true
	case KwIO:
		return KindIO, true
	}
	return 0, false
}
