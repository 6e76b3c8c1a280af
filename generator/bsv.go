// Package generator emits the Bluespec SoC_Map package for a parsed address map.
package generator

import (
	"fmt"

	"github.com/daveroberts0321/socmap/parser/socmap"
)

// hexDigits is the minimum digit count of generated literals; with one
// separator it gives the nine-character 'h_XXXX_XXXX form downstream tools expect.
const hexDigits = 8

var preamble = []string{
	"// THIS IS A PROGRAM-GENERATED FILE; DO NOT EDIT!",
	"// See: https://github.com/rsnikhil/Misc_Utilities    /Generate_SoC_Map",
	"",
	"package SoC_Map;",
	"",
	"// ================================================================",
	"// This module defines the overall 'address map' of the SoC, showing",
	"// the addresses serviced by each server IP, and which addresses are",
	"// memory vs. I/O., etc.",
	"",
	"// ***** WARNING! WARNING! WARNING! *****",
	"",
	"// During system integration, this address map should be identical to",
	"// the system interconnect settings (e.g., routing of requests between",
	"// clients and servers).  This map is also needed by software so that",
	"// it knows how to address various IPs.",
	"",
	"// This module contains no state; it just has constants, and so can be",
	"// freely instantiated at multiple places in the SoC module hierarchy",
	"// at no hardware cost.  It allows this map to be defined in one",
	"// place and shared across the SoC.",
	"",
	"// ================================================================",
	"// Exports",
	"",
	"export  SoC_Map_IFC (..), mkSoC_Map;",
	"",
	"// ================================================================",
	"// Bluespec library imports",
	"",
	"// None",
	"",
	"// ================================================================",
	"// Project imports",
	"",
	"import Fabric_Defs :: *;    // Only for type Fabric_Addr",
}

var trailer = []string{
	"endmodule",
	"",
	"// ================================================================",
	"",
	"endpackage",
}

// Generate returns the lines of the SoC_Map package for m.
func Generate(m *socmap.Map) []string {
	return GenerateLines(m.Constants, m.Regions)
}

// GenerateLines renders the SoC_Map package. Output depends only on the
// arguments and their order.
func GenerateLines(constants []*socmap.Constant, regions []*socmap.Region) []string {
	lines := make([]string, 0, len(preamble)+64+12*len(regions)+3*len(constants))
	lines = append(lines, preamble...)
	lines = appendInterface(lines, constants, regions)
	lines = appendModule(lines, constants, regions)
	lines = append(lines, trailer...)
	return lines
}

func appendInterface(lines []string, constants []*socmap.Constant, regions []*socmap.Region) []string {
	lines = append(lines,
		"",
		"// ================================================================",
		"// Interface for the address map module",
		"",
		"interface SoC_Map_IFC;",
	)

	for _, r := range regions {
		lines = append(lines,
			fmt.Sprintf("   // ---------------- %s region", r.Kind),
			fmt.Sprintf("   (* always_ready *) method Fabric_Addr  m_%s_addr_base;", r.Name),
			fmt.Sprintf("   (* always_ready *) method Fabric_Addr  m_%s_addr_size;", r.Name),
			fmt.Sprintf("   (* always_ready *) method Fabric_Addr  m_%s_addr_lim;", r.Name),
			"",
		)
	}

	lines = append(lines,
		"   // ---------------- Predicates ----------------",
		"   (* always_ready *)",
		"   method  Bool  m_is_mem_addr (Fabric_Addr addr);",
		"",
		"   (* always_ready *)",
		"   method  Bool  m_is_IO_addr (Fabric_Addr addr);",
		"",
	)

	lines = append(lines, "   // ---------------- Constants ----------------")
	for _, c := range constants {
		lines = append(lines, fmt.Sprintf("   (* always_ready *)  method  Bit #(64)  m_%s;", c.Name))
	}

	return append(lines, "endinterface")
}

func appendModule(lines []string, constants []*socmap.Constant, regions []*socmap.Region) []string {
	lines = append(lines,
		"",
		"// ================================================================",
		"// The address map module",
		"",
		"module mkSoC_Map (SoC_Map_IFC);",
		"",
	)

	for _, r := range regions {
		lines = append(lines,
			fmt.Sprintf("   // ---------------- %s region", r.Kind),
			fmt.Sprintf("   Fabric_Addr %s_addr_base = %s;", r.Name, literal(r.Base)),
			fmt.Sprintf("   Fabric_Addr %s_addr_size = %s;", r.Name, literal(r.Size)),
			fmt.Sprintf("   Fabric_Addr %s_addr_lim  = %s_addr_base + %s_addr_size;", r.Name, r.Name, r.Name),
			"",
			fmt.Sprintf("   function Bool fn_is_%s_addr (Fabric_Addr addr);", r.Name),
			fmt.Sprintf("      return ((%s_addr_base <= addr) && (addr < %s_addr_lim));", r.Name, r.Name),
			"   endfunction",
			"",
		)
	}

	lines = appendPredicate(lines, "Memory address predicate", "fn_is_mem_addr", regionsOfKind(regions, socmap.KindMem))
	lines = appendPredicate(lines, "IO address predicate", "fn_is_IO_addr", regionsOfKind(regions, socmap.KindIO))

	lines = append(lines,
		"   // ----------------------------------------------------------------",
		"   // Constants",
		"",
	)
	for _, c := range constants {
		lines = append(lines, fmt.Sprintf("   Bit #(64) %s = %s;", c.Name, literal(c.Value)))
	}
	lines = append(lines, "")

	lines = append(lines,
		"   // ----------------------------------------------------------------",
		"   // INTERFACE",
		"",
	)
	for _, r := range regions {
		lines = append(lines,
			fmt.Sprintf("   method Fabric_Addr m_%s_addr_base = %s_addr_base;", r.Name, r.Name),
			fmt.Sprintf("   method Fabric_Addr m_%s_addr_size = %s_addr_size;", r.Name, r.Name),
			fmt.Sprintf("   method Fabric_Addr m_%s_addr_lim  = %s_addr_lim;", r.Name, r.Name),
			"",
		)
	}
	lines = append(lines,
		"   method  Bool  m_is_mem_addr (Fabric_Addr addr) = fn_is_mem_addr (addr);",
		"   method  Bool  m_is_IO_addr (Fabric_Addr addr) = fn_is_IO_addr (addr);",
		"",
	)
	for _, c := range constants {
		lines = append(lines, fmt.Sprintf("   method  Bit #(64)  m_%s = %s;", c.Name, c.Name))
	}

	return lines
}

// appendPredicate emits an OR over the membership functions of regions.
// The leading False keeps the expression well-formed when regions is empty.
func appendPredicate(lines []string, title, fn string, regions []*socmap.Region) []string {
	lines = append(lines,
		"   // ----------------------------------------------------------------",
		"   // "+title,
		"",
		fmt.Sprintf("   function Bool %s (Fabric_Addr addr);", fn),
		"      return (   False",
	)
	for _, r := range regions {
		lines = append(lines, fmt.Sprintf("              || fn_is_%s_addr (addr)", r.Name))
	}
	return append(lines,
		"      );",
		"   endfunction",
		"",
	)
}

func regionsOfKind(regions []*socmap.Region, k socmap.Kind) []*socmap.Region {
	var out []*socmap.Region
	for _, r := range regions {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// literal renders v as an unsized Bluespec hex literal, e.g. 'h_8000_0000.
func literal(v uint64) string {
	return "'h_" + socmap.FormatHex(v, hexDigits)
}
