package project

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daveroberts0321/socmap/parser/socmap"
)

func TestFindMapFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.soc"), []byte(""), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.soc"), []byte(""), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(""), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "generated"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "generated", "c.soc"), []byte(""), 0644); err != nil {
		t.Fatalf("write generated file: %v", err)
	}

	files, err := FindMapFiles(dir)
	if err != nil {
		t.Fatalf("FindMapFiles error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.soc"), filepath.Join(dir, "b.soc")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestInitAndBuild(t *testing.T) {
	root := filepath.Join(t.TempDir(), "my_soc")
	if err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := Init(root); err == nil {
		t.Fatal("expected second Init to fail")
	}

	manifest, err := os.ReadFile(filepath.Join(root, ConfigFileName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(manifest), `name = "my_soc"`) || !strings.Contains(string(manifest), "# My Soc address map project") {
		t.Fatalf("unexpected manifest:\n%s", manifest)
	}

	path, ok, err := FindConfig(filepath.Join(root, "maps"))
	if err != nil || !ok {
		t.Fatalf("FindConfig: %v %v", ok, err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	var out bytes.Buffer
	results, err := Build(context.Background(), cfg, &out)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(results) != 1 || results[0].Cached {
		t.Fatalf("unexpected results %+v", results)
	}
	bsv, err := os.ReadFile(filepath.Join(root, "generated", "soc_map.bsv"))
	if err != nil {
		t.Fatalf("read bsv: %v", err)
	}
	if !strings.Contains(string(bsv), "Fabric_Addr dram_addr_base = 'h_8000_0000;") {
		t.Fatalf("unexpected bsv:\n%s", bsv)
	}
	hdr, err := os.ReadFile(filepath.Join(root, "generated", "soc_map.h"))
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if !strings.Contains(string(hdr), "#define DRAM_ADDR_BASE") {
		t.Fatalf("unexpected header:\n%s", hdr)
	}
	if !strings.Contains(out.String(), "Built 1 of 1 map files") {
		t.Fatalf("unexpected build log:\n%s", out.String())
	}

	// Second build is served from the cache.
	out.Reset()
	results, err = Build(context.Background(), cfg, &out)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if !results[0].Cached || !strings.Contains(out.String(), "is up to date") {
		t.Fatalf("expected cached result, log:\n%s", out.String())
	}

	// A damaged output invalidates the cache entry.
	if err := os.WriteFile(filepath.Join(root, "generated", "soc_map.bsv"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	results, err = Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("third Build: %v", err)
	}
	if results[0].Cached {
		t.Fatal("expected rebuild after output was modified")
	}

	if err := Clean(cfg); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "generated")); !os.IsNotExist(err) {
		t.Fatalf("expected generated/ to be removed, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, CacheFileName)); !os.IsNotExist(err) {
		t.Fatalf("expected cache to be removed, got %v", err)
	}
}

func writeProject(t *testing.T, manifest string, maps map[string]string) *Config {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte(manifest), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	for name, src := range maps {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(src), 0644); err != nil {
			t.Fatalf("write map: %v", err)
		}
	}
	cfg, err := LoadConfig(filepath.Join(root, ConfigFileName))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func TestBuildStrictFails(t *testing.T) {
	cfg := writeProject(t, "[project]\nname = \"x\"\n[build]\nstrict = true\naddr_width = 32\n", map[string]string{
		"maps/a.soc": "MEM a 0 2000\nIO b 1000 10\n",
	})
	_, err := Build(context.Background(), cfg, nil)
	if !errors.Is(err, socmap.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Findings) != 1 {
		t.Fatalf("expected one finding, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Root, "generated", "a.bsv")); !os.IsNotExist(err) {
		t.Fatal("strict failure must not write output")
	}
}

func TestBuildRebuildsWhenOutDirChanges(t *testing.T) {
	cfg := writeProject(t, "[project]\nname = \"moved\"\n[build]\nout_dir = \"gen_a\"\n", map[string]string{
		"maps/a.soc": "MEM a 0 1000\n",
	})
	if _, err := Build(context.Background(), cfg, nil); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	cfg.Build.OutDir = "gen_b"
	results, err := Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if len(results) != 1 || results[0].Cached {
		t.Fatalf("expected a fresh compile into the new out_dir, got %+v", results)
	}
	if _, err := os.Stat(filepath.Join(cfg.Root, "gen_b", "a.bsv")); err != nil {
		t.Fatalf("missing output in new out_dir: %v", err)
	}

	// the new location is cached from now on
	results, err = Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("third Build: %v", err)
	}
	if !results[0].Cached {
		t.Fatal("expected unchanged map to be cached")
	}
}

func TestBuildMultipleMaps(t *testing.T) {
	cfg := writeProject(t, "[project]\nname = \"multi\"\n[build]\nmaps = [\"maps\", \"extra/board.yaml\"]\njobs = 2\nno_cache = true\n", map[string]string{
		"maps/a.soc":       "MEM a 0 1000\n",
		"maps/sub/b.soc":   "IO b 1000 10\nnot a declaration\n",
		"extra/board.yaml": "regions:\n  - {kind: MEM, name: c, base: \"0x2000\", size: \"0x10\"}\n",
	})
	var out bytes.Buffer
	results, err := Build(context.Background(), cfg, &out)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, name := range []string{"a.bsv", "b.bsv", "board.bsv"} {
		if _, err := os.Stat(filepath.Join(cfg.OutDir(), name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Root, CacheFileName)); !os.IsNotExist(err) {
		t.Error("no_cache build must not write a cache")
	}
	if !strings.Contains(out.String(), "warning: ") || !strings.Contains(out.String(), "unrecognized format") {
		t.Fatalf("expected diagnostic in build log:\n%s", out.String())
	}
}

func TestBuildParseErrorStops(t *testing.T) {
	cfg := writeProject(t, "[project]\nname = \"bad\"\n", map[string]string{
		"maps/a.soc": "VAL x nothex\n",
	})
	_, err := Build(context.Background(), cfg, nil)
	var pe *socmap.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestBuildOutputCollision(t *testing.T) {
	cfg := writeProject(t, "[project]\nname = \"dup\"\n", map[string]string{
		"maps/x/a.soc": "MEM a 0 1\n",
		"maps/y/a.soc": "MEM a 0 1\n",
	})
	if _, err := Build(context.Background(), cfg, nil); err == nil || !strings.Contains(err.Error(), "would both generate") {
		t.Fatalf("expected collision error, got %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := map[string]string{
		"noname":  "[build]\nout_dir = \"gen\"\n",
		"width":   "[project]\nname = \"x\"\n[build]\naddr_width = 48\n",
		"unknown": "[project]\nname = \"x\"\ncolour = \"red\"\n",
		"syntax":  "[project\n",
		"jobs":    "[project]\nname = \"x\"\n[build]\njobs = -1\n",
		"nomaps":  "[project]\nname = \"x\"\n[build]\nmaps = []\n",
	}
	for name, manifest := range cases {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		if err := os.WriteFile(path, []byte(manifest), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := writeProject(t, "[project]\nname = \"d\"\n", nil)
	if cfg.Build.OutDir != "generated" || cfg.Build.AddrWidth != 64 || len(cfg.Build.Maps) != 1 || cfg.Build.Maps[0] != "maps" {
		t.Fatalf("unexpected defaults %+v", cfg.Build)
	}
	if cfg.OutDir() != filepath.Join(cfg.Root, "generated") {
		t.Fatalf("OutDir = %s", cfg.OutDir())
	}
}

func TestParseMapFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.soc")
	if err := os.WriteFile(path, []byte("MEM ram 0 1000\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := ParseMapFile(path)
	if err != nil {
		t.Fatalf("ParseMapFile: %v", err)
	}
	if len(m.Regions) != 1 || m.Regions[0].Pos.File != path {
		t.Fatalf("unexpected map %#v", m.Regions)
	}
	if _, err := ParseMapFile(filepath.Join(dir, "missing.soc")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
