// Package hdrgen emits a C header describing an address map, so software
// addresses the same IPs the SoC_Map package describes for hardware.
package hdrgen

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/daveroberts0321/socmap/generator"
	"github.com/daveroberts0321/socmap/parser/socmap"
	"github.com/daveroberts0321/socmap/spec/mapdoc"
)

// DefaultGuard is the include guard used when none is given.
const DefaultGuard = "SOC_MAP_H"

// Generate returns the header lines for m. Macro names are the upper-cased
// declaration names with characters outside [A-Za-z0-9_] replaced by '_'.
func Generate(m *socmap.Map, guard string) []string {
	if guard == "" {
		guard = DefaultGuard
	}
	lines := []string{
		"// THIS IS A PROGRAM-GENERATED FILE; DO NOT EDIT!",
		"",
		"#ifndef " + guard,
		"#define " + guard,
	}

	if len(m.Regions) > 0 {
		lines = append(lines, "", "// Address regions: base, size and exclusive limit")
	}
	for _, r := range m.Regions {
		name := macroName(r.Name)
		lines = append(lines,
			"",
			fmt.Sprintf("// %s region %s", r.Kind, r.Name),
			define(name+"_ADDR_BASE", r.Base),
			define(name+"_ADDR_SIZE", r.Size),
			define(name+"_ADDR_LIM", r.Limit()),
			fmt.Sprintf("#define %-32s %d", name+"_IS_MEM", boolInt(r.Kind == socmap.KindMem)),
		)
	}

	if len(m.Constants) > 0 {
		lines = append(lines, "", "// Constants", "")
	}
	for _, c := range m.Constants {
		lines = append(lines, define(macroName(c.Name), c.Value))
	}

	return append(lines, "", "#endif // "+guard)
}

// GenerateFromDoc reads a YAML/JSON map document and writes the header to outPath.
func GenerateFromDoc(docPath, outPath string) error {
	m, err := mapdoc.ReadFile(docPath)
	if err != nil {
		return err
	}
	return generator.WriteLines(Generate(m, GuardFor(outPath)), outPath)
}

// GuardFor derives an include guard from a header file name.
func GuardFor(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return DefaultGuard
	}
	return macroName(base)
}

func define(name string, v uint64) string {
	return fmt.Sprintf("#define %-32s 0x%016xULL", name, v)
}

func macroName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || r == '_'):
			b.WriteRune(unicode.ToUpper(r))
		case r < unicode.MaxASCII && unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
