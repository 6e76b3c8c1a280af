package mapdoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daveroberts0321/socmap/parser/socmap"
)

const src = `VAL pc_reset_value 1000
MEM dram 80000000 40000000
IO  uart0 c0000000 1000
`

func TestGenerate(t *testing.T) {
	m, err := socmap.ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	data, err := Generate(m)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	yaml := string(data)
	checks := []string{
		"version: \"1\"",
		"name: pc_reset_value",
		"value: \"0x1000\"",
		"kind: MEM",
		"base: \"0x8000_0000\"",
		"limit: \"0xc000_0000\"",
		"kind: IO",
	}
	for _, c := range checks {
		if !strings.Contains(yaml, c) {
			t.Fatalf("expected YAML to contain %q\n%s", c, yaml)
		}
	}
	if strings.Index(yaml, "name: dram") > strings.Index(yaml, "name: uart0") {
		t.Fatalf("regions out of order\n%s", yaml)
	}
}

// Test that a document decodes back into an equivalent map.
func TestDecodeRoundTrip(t *testing.T) {
	m, err := socmap.ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	data, err := Generate(m)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	got, err := Decode(data, "map.yaml")
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(got.Constants) != 1 || got.Constants[0].Value != 0x1000 {
		t.Fatalf("unexpected constants %#v", got.Constants)
	}
	if len(got.Regions) != 2 || got.Regions[1].Kind != socmap.KindIO || got.Regions[0].Limit() != 0xc0000000 {
		t.Fatalf("unexpected regions %#v", got.Regions)
	}
}

// Test decoding a hand-written document with unquoted numbers and lower-case kinds.
func TestDecodeHandWritten(t *testing.T) {
	doc := `constants:
  - name: ncores
    value: 4
regions:
  - kind: mem
    name: ram
    base: 0x8000_0000
    size: 1000
`
	m, err := Decode([]byte(doc), "hand.yaml")
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if m.Constants[0].Value != 4 || m.Regions[0].Kind != socmap.KindMem || m.Regions[0].Size != 0x1000 {
		t.Fatalf("unexpected map %#v %#v", m.Constants[0], m.Regions[0])
	}
}

// Error cases: bad kind, bad number, inconsistent limit, unknown field.
func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"kind":    "regions:\n  - {kind: ROM, name: r, base: \"0\", size: \"1\"}\n",
		"number":  "constants:\n  - {name: c, value: \"zz\"}\n",
		"limit":   "regions:\n  - {kind: MEM, name: r, base: \"0x10\", size: \"0x10\", limit: \"0x30\"}\n",
		"field":   "regions:\n  - {kind: MEM, name: r, base: \"0\", size: \"1\", color: red}\n",
		"version": "version: \"9\"\n",
		"noname":  "constants:\n  - {value: \"1\"}\n",
	}
	for name, doc := range cases {
		if _, err := Decode([]byte(doc), name+".yaml"); err == nil {
			t.Errorf("%s: expected decode error", name)
		}
	}
}

func TestWriteFileJSON(t *testing.T) {
	m, err := socmap.ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "map.json")
	if err := WriteFile(m, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"base": "0x8000_0000"`) {
		t.Fatalf("unexpected JSON\n%s", data)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(back.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(back.Regions))
	}
}

func TestIsDocument(t *testing.T) {
	for path, want := range map[string]bool{
		"map.yaml": true, "map.YML": true, "map.json": true, "map.soc": false, "map.txt": false,
	} {
		if got := IsDocument(path); got != want {
			t.Errorf("IsDocument(%q) = %v, want %v", path, got, want)
		}
	}
}
