// Package socmap implements the SoC address map parser.
// ast.go defines the model produced by the parser: constants, regions and diagnostics.
package socmap

import "fmt"

// Position of a declaration in the map source
type Position struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line"`
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
	return fmt.Sprintf("line %d", p.Line)
}

// Kind tags a region as memory or memory-mapped I/O
type Kind uint8

const (
	KindMem Kind = iota
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindMem:
		return "MEM"
	case KindIO:
		return "IO"
	}
	return "UNKNOWN"
}

// Constant is a named value declared with VAL
type Constant struct {
	Name  string   `json:"name"`
	Value uint64   `json:"value"`
	Pos   Position `json:"position"`
}

// Region is a named half-open address interval [Base, Base+Size)
type Region struct {
	Kind Kind     `json:"kind"`
	Name string   `json:"name"`
	Base uint64   `json:"base"`
	Size uint64   `json:"size"`
	Pos  Position `json:"position"`
}

// Limit returns the exclusive upper bound of the region.
func (r *Region) Limit() uint64 {
	return r.Base + r.Size
}

// Contains reports whether addr falls inside the region.
func (r *Region) Contains(addr uint64) bool {
	return r.Base <= addr && addr < r.Limit()
}

// Severity of a diagnostic
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Diagnostic is a non-fatal finding about one line of the map.
// Text holds the original line as read, without its terminator.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Pos      Position `json:"position"`
	Text     string   `json:"text,omitempty"`
	Message  string   `json:"message"`
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Map is a parsed address map. Constants and Regions keep source order.
type Map struct {
	Constants   []*Constant   `json:"constants"`
	Regions     []*Region     `json:"regions"`
	Diagnostics []*Diagnostic `json:"diagnostics,omitempty"`
}

// RegionsOfKind returns the regions tagged k, in declaration order.
func (m *Map) RegionsOfKind(k Kind) []*Region {
	var out []*Region
	for _, r := range m.Regions {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// IsMemAddr reports whether addr lies in any MEM region.
func (m *Map) IsMemAddr(addr uint64) bool {
	return m.inAny(KindMem, addr)
}

// IsIOAddr reports whether addr lies in any IO region.
func (m *Map) IsIOAddr(addr uint64) bool {
	return m.inAny(KindIO, addr)
}

func (m *Map) inAny(k Kind, addr uint64) bool {
	for _, r := range m.Regions {
		if r.Kind == k && r.Contains(addr) {
			return true
		}
	}
	return false
}
