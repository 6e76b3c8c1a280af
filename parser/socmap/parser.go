// Package socmap implements the SoC address map parser.
// parser.go contains the line-oriented parsing logic.
package socmap

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Grammar (one declaration per line, keywords case-insensitive):
//   Line     := [ Decl ] [ '//' comment ]
//   Decl     := 'VAL' NAME HEX
//             | ( 'MEM' | 'IO' ) NAME HEX HEX
//   HEX      := [ '0x' ] hexdigit { [ '_' ] hexdigit }
// Any other non-blank line is reported as a diagnostic and skipped.

const commentMarker = "//"

type parser struct {
	filename string
	m        *Map
}

// Parse reads an address map from r
func Parse(r io.Reader) (*Map, error) {
	return ParseWithFilename(r, "")
}

// ParseWithFilename allows tracking source file for better diagnostics
func ParseWithFilename(r io.Reader, filename string) (*Map, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	return ParseLines(lines, filename)
}

// ParseString parses a string containing an address map
func ParseString(s string) (*Map, error) {
	return Parse(strings.NewReader(s))
}

// ParseLines parses lines in file order. Line numbers are 1-based.
// A *ParseError aborts the parse and no map is returned.
func ParseLines(lines []string, filename string) (*Map, error) {
	p := &parser{
		filename: filename,
		m: &Map{
			Constants:   []*Constant{},
			Regions:     []*Region{},
			Diagnostics: []*Diagnostic{},
		},
	}
	for i, line := range lines {
		if err := p.parseLine(i+1, line); err != nil {
			return nil, err
		}
	}
	return p.m, nil
}

func readLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseLine(num int, original string) error {
	pos := Position{File: p.filename, Line: num}

	line := strings.TrimSpace(original)
	if i := strings.Index(line, commentMarker); i >= 0 {
		line = line[:i]
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}

	kw, arity := LookupKeyword(words[0])
	if kw == KwInvalid || len(words) != arity {
		p.m.Diagnostics = append(p.m.Diagnostics, &Diagnostic{
			Severity: SevWarning,
			Pos:      pos,
			Text:     original,
			Message:  "unrecognized format",
		})
		return nil
	}

	if kw == KwVal {
		value, err := parseHexAt(pos, words[2])
		if err != nil {
			return err
		}
		p.m.Constants = append(p.m.Constants, &Constant{
			Name:  words[1],
			Value: value,
			Pos:   pos,
		})
		return nil
	}

	kind, _ := kw.RegionKind()
	base, err := parseHexAt(pos, words[2])
	if err != nil {
		return err
	}
	size, err := parseHexAt(pos, words[3])
	if err != nil {
		return err
	}
	p.m.Regions = append(p.m.Regions, &Region{
		Kind: kind,
		Name: words[1],
		Base: base,
		Size: size,
		Pos:  pos,
	})
	return nil
}

func parseHexAt(pos Position, tok string) (uint64, error) {
	v, err := ParseHex(tok)
	if err != nil {
		return 0, &ParseError{Pos: pos, Token: tok, Err: err}
	}
	return v, nil
}
