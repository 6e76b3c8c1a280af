package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runSub(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	defer cmd.SetOut(nil)
	if err := cmd.RunE(cmd, args); err != nil {
		t.Fatalf("%s %v: %v", cmd.Name(), args, err)
	}
	return buf.String()
}

func TestExportAndHeaderFromDocument(t *testing.T) {
	dir := t.TempDir()
	in := writeMap(t, dir, "soc.soc", "VAL pc_reset_value 1000\nMEM dram 80000000 40000000\nIO uart0 c0000000 1000\n")
	doc := filepath.Join(dir, "soc.yaml")
	runSub(t, exportCmd, in, doc)

	data, err := os.ReadFile(doc)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.Contains(string(data), "name: dram") {
		t.Fatalf("expected dram in document, got:\n%s", data)
	}

	hdr := filepath.Join(dir, "soc.h")
	runSub(t, headerCmd, doc, hdr)
	data, err = os.ReadFile(hdr)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	for _, s := range []string{"UART0_ADDR_BASE", "PC_RESET_VALUE"} {
		if !strings.Contains(string(data), s) {
			t.Errorf("expected %s in header", s)
		}
	}
}

func TestHeaderFromMap(t *testing.T) {
	dir := t.TempDir()
	in := writeMap(t, dir, "soc.soc", "IO uart0 c0000000 1000\n")
	hdr := filepath.Join(dir, "soc.h")
	runSub(t, headerCmd, in, hdr)
	if _, err := os.Stat(hdr); err != nil {
		t.Fatalf("expected header file: %v", err)
	}
}

func TestVersionJSON(t *testing.T) {
	versionFormat, versionShowFull = "json", true
	defer func() { versionFormat, versionShowFull = "pretty", false }()

	out := runSub(t, versionCmd)
	var info buildInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if info.Tool != "socmap" || info.Version == "" {
		t.Fatalf("unexpected payload %+v", info)
	}
	if info.GitCommit == "" || info.BuildDate == "" {
		t.Fatal("expected commit and build date with --full")
	}
}

func TestVersionPretty(t *testing.T) {
	out := runSub(t, versionCmd)
	if !strings.HasPrefix(out, "socmap ") || strings.Contains(out, "commit:") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestVersionRejectsFormat(t *testing.T) {
	versionFormat = "xml"
	defer func() { versionFormat = "pretty" }()
	if err := versionCmd.RunE(versionCmd, nil); err == nil {
		t.Fatal("expected error for --format xml")
	}
}
