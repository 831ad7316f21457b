package completion

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.lsp.dev/protocol"
	"golang.org/x/tools/txtar"
)

// extract writes the files of a txtar archive under a fresh temp dir.
func extract(t *testing.T, name string) string {
	t.Helper()
	archive, err := txtar.ParseFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	dir := t.TempDir()
	for _, f := range archive.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScan(t *testing.T) {
	dir := extract(t, "workspace.txtar")

	ix, err := Scan(dir, Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{"another-tag", "custom-tag", "multi-line"}
	if diff := cmp.Diff(want, ix.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	got := ix.Lookup("multi-line")
	wantDecl := []Declaration{{Name: "multi-line", RelPath: "components/nested.html", Line: 4, Col: 1}}
	if diff := cmp.Diff(wantDecl, got, cmpopts.IgnoreFields(Declaration{}, "Path")); diff != "" {
		t.Errorf("Lookup mismatch (-want +got):\n%s", diff)
	}
	if len(got) == 1 && !filepath.IsAbs(got[0].Path) {
		t.Errorf("Path %q is not absolute", got[0].Path)
	}
}

func TestScanDuplicates(t *testing.T) {
	dir := extract(t, "workspace.txtar")

	ix, err := Scan(dir, Options{Workers: 1})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	dups := ix.Duplicates()
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate, got %+v", dups)
	}
	want := []Declaration{
		{Name: "custom-tag", RelPath: "components/nested.html", Line: 1, Col: 1},
		{Name: "custom-tag", RelPath: "index.html", Line: 3, Col: 3},
	}
	if diff := cmp.Diff(want, dups[0].Declarations, cmpopts.IgnoreFields(Declaration{}, "Path")); diff != "" {
		t.Errorf("duplicate declarations mismatch (-want +got):\n%s", diff)
	}
	if dups[0].Message != `Duplicate component "custom-tag" declared 2 times` {
		t.Errorf("Message = %q", dups[0].Message)
	}
}

func TestScanOptions(t *testing.T) {
	dir := extract(t, "workspace.txtar")

	ix, err := Scan(dir, Options{
		Extensions:  []string{".html", ".txt"},
		ExcludeDirs: []string{"node_modules"},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{"another-tag", "custom-tag", "from-dist", "from-out", "multi-line", "txt-only"}
	if diff := cmp.Diff(want, ix.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestListFiles(t *testing.T) {
	dir := extract(t, "workspace.txtar")

	files, err := ListFiles(dir, Options{})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		if err != nil {
			t.Fatal(err)
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	want := []string{"components/nested.html", "index.html"}
	if diff := cmp.Diff(want, rel); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope"), Options{}); err == nil {
		t.Errorf("expected an error for a missing root")
	}
}

func TestExtractDeclarations(t *testing.T) {
	content := "<div>\n  <template is=\"a\"></template><template is='b'></template>\n<template data-is=\"c\" is=\"d\">"

	var got []Declaration
	ExtractDeclarations(content, func(d Declaration) { got = append(got, d) })

	want := []Declaration{
		{Name: "a", Line: 2, Col: 3},
		{Name: "d", Line: 3, Col: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
}

func TestItems(t *testing.T) {
	items := Items([]string{"nav-bar"})
	want := []protocol.CompletionItem{{
		Label:            "nav-bar",
		Kind:             protocol.CompletionItemKindClass,
		InsertText:       "<nav-bar></nav-bar>",
		InsertTextFormat: protocol.InsertTextFormatPlainText,
		Documentation:    "Call HTML6 component <nav-bar>|</nav-bar>",
	}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	if got := Items(nil); got == nil || len(got) != 0 {
		t.Errorf("Items(nil) = %#v, want empty non-nil", got)
	}
}

func TestNilIndex(t *testing.T) {
	var ix *Index
	if ix.Len() != 0 || ix.Names() != nil || ix.Duplicates() != nil || ix.Lookup("x") != nil {
		t.Errorf("nil index should be empty")
	}
}

func TestWatcher(t *testing.T) {
	dir := extract(t, "workspace.txtar")

	scans := make(chan *Index, 64)
	w, err := Watch(dir, Options{}, 20*time.Millisecond, func(ix *Index) { scans <- ix })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	waitFor := func(name string, present bool) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case ix := <-scans:
				if (len(ix.Lookup(name)) > 0) == present {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q present=%v", name, present)
			}
		}
	}

	path := filepath.Join(dir, "components", "card.html")
	if err := os.WriteFile(path, []byte(`<template is="fresh-card"></template>`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor("fresh-card", true)

	sub := filepath.Join(dir, "widgets")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directory.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "w.html"), []byte(`<template is="widget"></template>`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor("widget", true)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor("fresh-card", false)

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
