// Package mapdoc converts parsed address maps to and from a YAML (or JSON)
// document. The document is the interchange form consumed by hdrgen and by
// tools that do not want to parse the line grammar.
package mapdoc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/daveroberts0321/socmap/parser/socmap"
)

// SchemaVersion is written to every document and checked on decode.
const SchemaVersion = "1"

// Document is the serialized form of a map. Numbers are grouped hex strings
// such as "0x8000_0000"; sequences keep declaration order.
type Document struct {
	Version   string        `yaml:"version" json:"version"`
	Constants []ConstantDoc `yaml:"constants" json:"constants"`
	Regions   []RegionDoc   `yaml:"regions" json:"regions"`
}

type ConstantDoc struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// RegionDoc describes one region. Limit is derived and only checked on decode.
type RegionDoc struct {
	Kind  string `yaml:"kind" json:"kind"`
	Name  string `yaml:"name" json:"name"`
	Base  string `yaml:"base" json:"base"`
	Size  string `yaml:"size" json:"size"`
	Limit string `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// FromMap builds the document for m.
func FromMap(m *socmap.Map) *Document {
	doc := &Document{
		Version:   SchemaVersion,
		Constants: make([]ConstantDoc, 0, len(m.Constants)),
		Regions:   make([]RegionDoc, 0, len(m.Regions)),
	}
	for _, c := range m.Constants {
		doc.Constants = append(doc.Constants, ConstantDoc{Name: c.Name, Value: hex(c.Value)})
	}
	for _, r := range m.Regions {
		doc.Regions = append(doc.Regions, RegionDoc{
			Kind:  r.Kind.String(),
			Name:  r.Name,
			Base:  hex(r.Base),
			Size:  hex(r.Size),
			Limit: hex(r.Limit()),
		})
	}
	return doc
}

// ToMap converts the document back into a map. Positions refer to the
// 1-based index of the entry within its sequence.
func (d *Document) ToMap(filename string) (*socmap.Map, error) {
	if d.Version != "" && d.Version != SchemaVersion {
		return nil, fmt.Errorf("unsupported map document version %q", d.Version)
	}
	m := &socmap.Map{
		Constants:   []*socmap.Constant{},
		Regions:     []*socmap.Region{},
		Diagnostics: []*socmap.Diagnostic{},
	}
	for i, c := range d.Constants {
		pos := socmap.Position{File: filename, Line: i + 1}
		if c.Name == "" {
			return nil, fmt.Errorf("%s: constant without name", pos)
		}
		v, err := parseHex(pos, c.Value)
		if err != nil {
			return nil, err
		}
		m.Constants = append(m.Constants, &socmap.Constant{Name: c.Name, Value: v, Pos: pos})
	}
	for i, r := range d.Regions {
		pos := socmap.Position{File: filename, Line: i + 1}
		if r.Name == "" {
			return nil, fmt.Errorf("%s: region without name", pos)
		}
		kw, _ := socmap.LookupKeyword(r.Kind)
		kind, ok := kw.RegionKind()
		if !ok {
			return nil, fmt.Errorf("%s: region %q: unknown kind %q", pos, r.Name, r.Kind)
		}
		base, err := parseHex(pos, r.Base)
		if err != nil {
			return nil, err
		}
		size, err := parseHex(pos, r.Size)
		if err != nil {
			return nil, err
		}
		region := &socmap.Region{Kind: kind, Name: r.Name, Base: base, Size: size, Pos: pos}
		if r.Limit != "" {
			lim, err := parseHex(pos, r.Limit)
			if err != nil {
				return nil, err
			}
			if lim != region.Limit() {
				return nil, fmt.Errorf("%s: region %q: limit %s does not equal base + size", pos, r.Name, r.Limit)
			}
		}
		m.Regions = append(m.Regions, region)
	}
	return m, nil
}

// Generate renders m as a YAML document.
func Generate(m *socmap.Map) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("nil map")
	}
	return yaml.Marshal(FromMap(m))
}

// GenerateJSON renders m as an indented JSON document.
func GenerateJSON(m *socmap.Map) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("nil map")
	}
	data, err := json.MarshalIndent(FromMap(m), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a YAML document (JSON is accepted as a YAML subset).
func Decode(data []byte, filename string) (*socmap.Map, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse map document: %w", filename, err)
	}
	return doc.ToMap(filename)
}

// ReadFile decodes the map document at path.
func ReadFile(path string) (*socmap.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// WriteFile renders m and writes it to path. A .json extension selects JSON,
// anything else YAML.
func WriteFile(m *socmap.Map, path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = GenerateJSON(m)
	} else {
		data, err = Generate(m)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// IsDocument reports whether path names a map document rather than a line map.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func hex(v uint64) string {
	return "0x" + socmap.FormatHex(v, 1)
}

func parseHex(pos socmap.Position, tok string) (uint64, error) {
	v, err := socmap.ParseHex(tok)
	if err != nil {
		return 0, &socmap.ParseError{Pos: pos, Token: tok, Err: err}
	}
	return v, nil
}
