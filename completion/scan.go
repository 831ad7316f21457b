// Package completion collects the names of HTML6 components declared with
// <template is="name"> across a workspace and offers them as tag
// completions.
package completion

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// templateDecl matches a template start tag carrying a double-quoted "is"
// attribute. Group 1 is the name.
var templateDecl = regexp.MustCompile(`<template\s+[^>]*\bis\s*=\s*"(.*?)"[^>]*>`)

// Options controls which files Scan reads.
type Options struct {
	// Extensions are the file suffixes to read (default: ".html").
	Extensions []string
	// ExcludeDirs are directory base names never descended into
	// (default: node_modules, dist, out). Hidden entries are always skipped.
	ExcludeDirs []string
	// Workers bounds concurrent file reads (default: one per CPU).
	Workers int
	// Logger receives warnings about unreadable entries (default: no-op).
	Logger *zap.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Extensions:  []string{".html"},
		ExcludeDirs: []string{"node_modules", "dist", "out"},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if len(o.Extensions) == 0 {
		o.Extensions = def.Extensions
	}
	if o.ExcludeDirs == nil {
		o.ExcludeDirs = def.ExcludeDirs
	}
	if o.Workers <= 0 {
		o.Workers = max(runtime.NumCPU(), 1)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Declaration is one <template is="..."> found in a file.
type Declaration struct {
	// Name is the component name, the value of "is".
	Name string `json:"name"`
	// Path is the absolute path of the declaring file.
	Path string `json:"path"`
	// RelPath is Path relative to the scanned root, with forward slashes.
	RelPath string `json:"relPath"`
	// Line is the one-based line of the template tag.
	Line int `json:"line"`
	// Col is the one-based byte column of the template tag.
	Col int `json:"col"`
}

// Duplicate is reported when a component name is declared more than once.
type Duplicate struct {
	// Name is the duplicated component name.
	Name string `json:"name"`
	// Declarations lists every declaration, ordered by path and line.
	Declarations []Declaration `json:"declarations"`
	// Message is a human-readable description.
	Message string `json:"message"`
}

// Index is an immutable snapshot of the declared components.
type Index struct {
	root   string
	byName map[string][]Declaration
}

// NewIndex builds an index from declarations found elsewhere.
func NewIndex(root string, decls []Declaration) *Index {
	ix := &Index{root: root, byName: make(map[string][]Declaration)}
	for _, d := range decls {
		ix.byName[d.Name] = append(ix.byName[d.Name], d)
	}
	for _, entries := range ix.byName {
		sortDeclarations(entries)
	}
	return ix
}

// Root is the directory the index was built from.
func (ix *Index) Root() string {
	return ix.root
}

// Len returns the number of distinct names.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byName)
}

// Names returns every distinct component name, sorted.
func (ix *Index) Names() []string {
	if ix == nil {
		return nil
	}
	names := make([]string, 0, len(ix.byName))
	for name := range ix.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the declarations of name.
func (ix *Index) Lookup(name string) []Declaration {
	if ix == nil {
		return nil
	}
	return ix.byName[name]
}

// Duplicates returns the names declared more than once, sorted by name.
func (ix *Index) Duplicates() []Duplicate {
	if ix == nil {
		return nil
	}
	var dups []Duplicate
	for _, name := range ix.Names() {
		entries := ix.byName[name]
		if len(entries) < 2 {
			continue
		}
		dups = append(dups, Duplicate{
			Name:         name,
			Declarations: entries,
			Message:      fmt.Sprintf(`Duplicate component "%s" declared %d times`, name, len(entries)),
		})
	}
	return dups
}

// ═══════════════════════════════════════════════════════════════════════════
// DIRECTORY SCAN (CONCURRENT)
// ═══════════════════════════════════════════════════════════════════════════

// Scan walks root and indexes every component declared in matching files.
//
// Scan process:
//  1. Walk the tree, skipping hidden entries and excluded directories, and
//     collect files with a configured extension
//  2. Read and scan the files with a worker pool
//  3. Merge the per-file declarations into an Index
//
// Unreadable directories and files are logged and skipped, never fatal.
//
// Returns: the index, or an error when root itself cannot be read.
//
// Thread-safety: Scan shares no state between calls.
func Scan(root string, opts Options) (*Index, error) {
	opts = opts.withDefaults()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("completion: resolve %s: %w", root, err)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("completion: read root: %w", err)
	}

	// Phase 1: Collect candidate files
	files := collectFiles(abs, opts)

	// Phase 2: Scan them concurrently
	registry := scanFilesConcurrently(files, abs, opts)

	// Phase 3: Snapshot
	var decls []Declaration
	registry.Range(func(_, value any) bool {
		list := value.(*declarationList)
		decls = append(decls, list.entries...)
		return true
	})
	return NewIndex(abs, decls), nil
}

// ListFiles returns the files under root that Scan would read, in walk
// order.
func ListFiles(root string, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("completion: resolve %s: %w", root, err)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("completion: read root: %w", err)
	}
	return collectFiles(abs, opts), nil
}

func collectFiles(root string, opts Options) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			opts.Logger.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && slices.Contains(opts.ExcludeDirs, name) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && hasExtension(name, opts.Extensions) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// declarationList is the per-name value of the shared registry.
type declarationList struct {
	mu      sync.Mutex
	entries []Declaration
}

// scanFilesConcurrently reads files with a pool of workers fed from a
// channel. Workers write into a sync.Map keyed by component name.
func scanFilesConcurrently(files []string, root string, opts Options) *sync.Map {
	var registry sync.Map // map[string]*declarationList
	if len(files) == 0 {
		return &registry
	}

	fileChan := make(chan string, len(files))
	var wg sync.WaitGroup
	for range min(opts.Workers, len(files)) {
		wg.Go(func() {
			for path := range fileChan {
				scanFile(path, root, opts.Logger, &registry)
			}
		})
	}

	for _, path := range files {
		fileChan <- path
	}
	close(fileChan)
	wg.Wait()

	return &registry
}

func scanFile(path, root string, logger *zap.Logger, registry *sync.Map) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
		return
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	ExtractDeclarations(string(content), func(d Declaration) {
		d.Path = path
		d.RelPath = rel
		storeDeclaration(registry, d)
	})
}

func storeDeclaration(registry *sync.Map, d Declaration) {
	value, _ := registry.LoadOrStore(d.Name, &declarationList{})
	list := value.(*declarationList)
	list.mu.Lock()
	list.entries = append(list.entries, d)
	list.mu.Unlock()
}

// ExtractDeclarations finds every <template ... is="name" ...> in content
// and calls emit with its name and position. Empty names are ignored.
func ExtractDeclarations(content string, emit func(Declaration)) {
	for _, m := range templateDecl.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		if name == "" {
			continue
		}
		start := m[0]
		emit(Declaration{
			Name: name,
			Line: strings.Count(content[:start], "\n") + 1,
			Col:  start - strings.LastIndexByte(content[:start], '\n'),
		})
	}
}

func sortDeclarations(entries []Declaration) {
	slices.SortFunc(entries, func(a, b Declaration) int {
		if c := strings.Compare(a.RelPath, b.RelPath); c != 0 {
			return c
		}
		return a.Line - b.Line
	})
}
