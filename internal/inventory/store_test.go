package inventory

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanMissingRoot(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Scan(); got != nil {
		t.Errorf("Scan() = %v, want nil for missing root", got)
	}
}

func TestScanEmptyRoot(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Scan(); got != nil {
		t.Errorf("Scan() = %v, want nil for empty root", got)
	}
}

func TestScanRecords(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/report_final.pdf", "pdf")
	writeFile(t, root, "notes.txt", "txt")
	writeFile(t, root, "archive.tar.gz", "gz")

	s, err := New(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	recs := s.Scan()
	if len(recs) != 3 {
		t.Fatalf("Scan() returned %d records, want 3", len(recs))
	}

	byPath := make(map[string]string)
	for _, r := range recs {
		byPath[r.Path] = r.Stem
	}
	if byPath["docs/report_final.pdf"] != "report_final" {
		t.Errorf("stem for docs/report_final.pdf = %q, want report_final", byPath["docs/report_final.pdf"])
	}
	if byPath["notes.txt"] != "notes" {
		t.Errorf("stem for notes.txt = %q", byPath["notes.txt"])
	}
	// Stem strips only the last extension.
	if byPath["archive.tar.gz"] != "archive.tar" {
		t.Errorf("stem for archive.tar.gz = %q, want archive.tar", byPath["archive.tar.gz"])
	}
}

func TestScanSkipsDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c.txt", "x")

	s, err := New(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	recs := s.Scan()
	if len(recs) != 1 || recs[0].Path != "a/b/c.txt" {
		t.Errorf("Scan() = %v, want single record a/b/c.txt", recs)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	s, err := New(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	cases := []string{"", "../evil", "a/../../evil", "/etc/passwd"}
	for _, rel := range cases {
		if _, err := s.Resolve(rel); err == nil {
			t.Errorf("Resolve(%q) succeeded, want error", rel)
		}
	}
}

func TestResolveAndRead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/file.txt", "hello")

	s, err := New(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	abs, err := s.Resolve("docs/file.txt")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(abs) != filepath.Join(s.Root(), "docs") {
		t.Errorf("Resolve() = %q, not under root", abs)
	}

	data, err := s.Read("docs/file.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("Read() = %q, want hello", data)
	}
}
