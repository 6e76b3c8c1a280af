package socmap

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// ErrValidation is returned by callers that treat validation findings as fatal.
var ErrValidation = errors.New("address map failed validation")

// ValidateOptions selects the optional checks of Validate.
type ValidateOptions struct {
	// AddrWidth is the fabric address width in bits: 0 (unchecked), 32 or 64.
	AddrWidth int
}

// CheckAddrWidth rejects widths Validate does not know how to check.
func CheckAddrWidth(width int) error {
	switch width {
	case 0, 32, 64:
		return nil
	}
	return fmt.Errorf("unsupported address width %d (must be 32 or 64)", width)
}

// Validate reports duplicate names, overlapping regions, regions whose limit
// overflows 64 bits, and regions that do not fit the fabric address width.
// The parser accepts all of these; Validate is an explicit, optional pass and
// never modifies m.
func Validate(m *Map, opts ValidateOptions) []*Diagnostic {
	var diags []*Diagnostic
	report := func(pos Position, format string, args ...interface{}) {
		diags = append(diags, &Diagnostic{
			Severity: SevError,
			Pos:      pos,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	constSeen := make(map[string]*Constant, len(m.Constants))
	for _, c := range m.Constants {
		if first, ok := constSeen[c.Name]; ok {
			report(c.Pos, "constant %q already declared at %s", c.Name, first.Pos)
			continue
		}
		constSeen[c.Name] = c
	}

	regionSeen := make(map[string]*Region, len(m.Regions))
	for _, r := range m.Regions {
		if first, ok := regionSeen[r.Name]; ok {
			report(r.Pos, "region %q already declared at %s", r.Name, first.Pos)
			continue
		}
		regionSeen[r.Name] = r
	}

	for _, r := range m.Regions {
		if r.Limit() < r.Base {
			report(r.Pos, "region %q: base 0x%s + size 0x%s overflows 64 bits",
				r.Name, FormatHex(r.Base, 1), FormatHex(r.Size, 1))
			continue
		}
		if opts.AddrWidth == 32 {
			if _, err := safecast.Conv[uint32](r.Limit()); err != nil {
				report(r.Pos, "region %q: limit 0x%s does not fit a 32-bit address",
					r.Name, FormatHex(r.Limit(), 1))
			}
		}
	}

	for i, a := range m.Regions {
		for _, b := range m.Regions[i+1:] {
			if overlaps(a, b) {
				report(b.Pos, "region %q [0x%s, 0x%s) overlaps region %q declared at %s",
					b.Name, FormatHex(b.Base, 1), FormatHex(b.Limit(), 1), a.Name, a.Pos)
			}
		}
	}

	return diags
}

func overlaps(a, b *Region) bool {
	if a.Size == 0 || b.Size == 0 {
		return false
	}
	if a.Limit() < a.Base || b.Limit() < b.Base {
		return false
	}
	return a.Base < b.Limit() && b.Base < a.Limit()
}
