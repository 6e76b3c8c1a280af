// Package project builds socmap projects: a socmap.toml manifest and one or
// more address maps compiled into generated/.
package project

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/daveroberts0321/socmap/generator"
	"github.com/daveroberts0321/socmap/hdrgen"
	"github.com/daveroberts0321/socmap/parser/socmap"
	"github.com/daveroberts0321/socmap/spec/mapdoc"
	"github.com/daveroberts0321/socmap/version"
)

//go:embed templates/*
var templates embed.FS

// MapExtension is the extension FindMapFiles looks for.
const MapExtension = ".soc"

// Init creates a new socmap project with scaffolding
func Init(name string) error {
	if _, err := os.Stat(filepath.Join(name, ConfigFileName)); err == nil {
		return fmt.Errorf("project already initialized: %s exists", filepath.Join(name, ConfigFileName))
	}

	dirs := []string{
		name,
		filepath.Join(name, "maps"),
		filepath.Join(name, "generated"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	projectName := filepath.Base(name)
	templateFiles := map[string]string{
		ConfigFileName:     "templates/socmap.toml",
		"maps/soc_map.soc": "templates/soc_map.soc",
		"README.md":        "templates/README.md",
		".gitignore":       "templates/gitignore",
	}
	for filePath, templatePath := range templateFiles {
		if err := writeTemplateFile(name, filePath, templatePath, projectName); err != nil {
			return fmt.Errorf("failed to write %s: %w", filePath, err)
		}
	}
	return nil
}

func writeTemplateFile(projectDir, filePath, templatePath, projectName string) error {
	content, err := templates.ReadFile(templatePath)
	if err != nil {
		return err
	}

	title := cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ").Replace(projectName))
	contentStr := string(content)
	contentStr = strings.ReplaceAll(contentStr, "{{.ProjectName}}", projectName)
	contentStr = strings.ReplaceAll(contentStr, "{{.Title}}", title)

	fullPath := filepath.Join(projectDir, filepath.FromSlash(filePath))
	return os.WriteFile(fullPath, []byte(contentStr), 0644)
}

// ParseMapFile reads a map from a line-grammar file or a YAML/JSON map document.
func ParseMapFile(filename string) (*socmap.Map, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseMapData(data, filename)
}

func parseMapData(data []byte, filename string) (*socmap.Map, error) {
	if mapdoc.IsDocument(filename) {
		return mapdoc.Decode(data, filename)
	}
	return socmap.ParseWithFilename(bytes.NewReader(data), filename)
}

// FindMapFiles returns the sorted *.soc files under root, skipping any
// directory named "generated".
func FindMapFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root && d.Name() == "generated" {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(path, MapExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// MapFiles expands the [build].maps entries into the list of map files.
// Directories are searched with FindMapFiles; files are taken as given.
func (c *Config) MapFiles() ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for i, p := range c.MapPaths() {
		entry := c.Build.Maps[i]
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%s: [build].maps entry %q: %w", c.Path, entry, err)
		}
		found := []string{p}
		if info.IsDir() {
			if found, err = FindMapFiles(p); err != nil {
				return nil, err
			}
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

// Result describes the outcome of compiling one map file.
type Result struct {
	Input    string
	Outputs  []string
	Map      *socmap.Map
	Findings []*socmap.Diagnostic
	Cached   bool
}

// Build compiles every map of the project. Maps are compiled concurrently;
// results are returned in input order. The first failure cancels the build.
func Build(ctx context.Context, cfg *Config, out io.Writer) ([]Result, error) {
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintf(out, "Building %s...\n", cfg.Project.Name)

	files, err := cfg.MapFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "   No map files found")
		return nil, nil
	}
	if err := checkOutputNames(files); err != nil {
		return nil, err
	}

	var cache *Cache
	if !cfg.Build.NoCache {
		cache = OpenCache(filepath.Join(cfg.Root, CacheFileName))
	}

	jobs := cfg.Build.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each goroutine writes only results[i]
	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := compileFile(cfg, cache, file)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := cache.Save(); err != nil {
		fmt.Fprintf(out, "   warning: failed to save build cache: %v\n", err)
	}

	built := 0
	for _, res := range results {
		rel := cfg.rel(res.Input)
		if res.Cached {
			fmt.Fprintf(out, "   %s is up to date\n", rel)
			continue
		}
		built++
		fmt.Fprintf(out, "   Processed %s\n", rel)
		for _, d := range res.Map.Diagnostics {
			fmt.Fprintf(out, "      warning: %s\n", d)
		}
	}
	fmt.Fprintf(out, "Built %d of %d map files\n", built, len(files))
	return results, nil
}

func compileFile(cfg *Config, cache *Cache, file string) (Result, error) {
	res := Result{Input: file}
	data, err := os.ReadFile(file)
	if err != nil {
		return res, fmt.Errorf("failed to read %s: %w", file, err)
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	bsvPath := filepath.Join(cfg.OutDir(), base+".bsv")
	res.Outputs = []string{bsvPath}
	hdrPath := ""
	if cfg.Build.Header {
		hdrPath = filepath.Join(cfg.OutDir(), base+".h")
		res.Outputs = append(res.Outputs, hdrPath)
	}

	digest := digestOf(data)
	options := cfg.fingerprint()
	if cache.Fresh(file, digest, options, res.Outputs) {
		res.Cached = true
		return res, nil
	}

	m, err := parseMapData(data, file)
	if err != nil {
		return res, fmt.Errorf("failed to parse %s: %w", file, err)
	}
	res.Map = m

	if cfg.Build.Strict {
		res.Findings = socmap.Validate(m, socmap.ValidateOptions{AddrWidth: cfg.Build.AddrWidth})
		if len(res.Findings) > 0 {
			return res, &ValidationError{File: file, Findings: res.Findings}
		}
	}

	outputs := map[string][]byte{
		bsvPath: []byte(generator.Render(m)),
	}
	if hdrPath != "" {
		outputs[hdrPath] = []byte(generator.JoinLines(hdrgen.Generate(m, hdrgen.GuardFor(hdrPath))))
	}
	if err := os.MkdirAll(cfg.OutDir(), 0755); err != nil {
		return res, fmt.Errorf("failed to create directory %s: %w", cfg.OutDir(), err)
	}
	for _, path := range res.Outputs {
		if err := os.WriteFile(path, outputs[path], 0644); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	cache.Record(file, digest, options, outputs)
	return res, nil
}

// ValidationError carries the findings that failed a strict build.
type ValidationError struct {
	File     string
	Findings []*socmap.Diagnostic
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d validation finding(s)", e.File, len(e.Findings))
	for _, d := range e.Findings {
		fmt.Fprintf(&b, "\n   %s", d)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return socmap.ErrValidation }

// checkOutputNames rejects two maps that would generate the same file.
func checkOutputNames(files []string) error {
	owner := map[string]string{}
	for _, f := range files {
		base := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if prev, ok := owner[base]; ok {
			return fmt.Errorf("%s and %s would both generate %s.bsv", prev, f, base)
		}
		owner[base] = f
	}
	return nil
}

func (c *Config) fingerprint() string {
	return fmt.Sprintf("v=%s header=%t strict=%t width=%d", version.Version, c.Build.Header, c.Build.Strict, c.Build.AddrWidth)
}

func (c *Config) rel(path string) string {
	if c.Root == "" {
		return path
	}
	if r, err := filepath.Rel(c.Root, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

// Clean removes generated outputs and the build cache.
func Clean(cfg *Config) error {
	if err := os.RemoveAll(cfg.OutDir()); err != nil {
		return err
	}
	return OpenCache(filepath.Join(cfg.Root, CacheFileName)).Clear()
}
