package app

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pagemail/pagemail/internal/report"
)

func TestWriteArtifactsProducesDatedBundle(t *testing.T) {
	dir := t.TempDir()
	rep := report.Report{
		Text: "Results from https://example.com\nLeague memo — https://example.com/memo\n",
		HTML: "<html><body><p>digest</p></body></html>",
	}
	now := time.Date(2025, 3, 9, 8, 30, 0, 0, time.UTC)

	if err := writeArtifacts(dir, now, rep); err != nil {
		t.Fatalf("writeArtifacts error: %v", err)
	}

	txt, err := os.ReadFile(filepath.Join(dir, "digest-2025-03-09.txt"))
	if err != nil {
		t.Fatalf("text digest: %v", err)
	}
	if string(txt) != rep.Text {
		t.Fatalf("text digest = %q, want the rendered body", txt)
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "digest-2025-03-09.pdf"))
	if err != nil {
		t.Fatalf("pdf digest: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) || len(pdf) < 500 {
		t.Fatalf("pdf digest looks wrong: %d bytes", len(pdf))
	}

	sums, err := os.ReadFile(filepath.Join(dir, "SHA256SUMS"))
	if err != nil {
		t.Fatalf("checksums: %v", err)
	}
	wantSum := sha256.Sum256(txt)
	wantLine := hex.EncodeToString(wantSum[:]) + "  digest-2025-03-09.txt"
	if !strings.Contains(string(sums), wantLine) {
		t.Fatalf("SHA256SUMS missing %q:\n%s", wantLine, sums)
	}
	if strings.Contains(string(sums), "SHA256SUMS") {
		t.Fatalf("index must not checksum itself:\n%s", sums)
	}
}

func TestWriteArtifactsReportsUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("prepare collision: %v", err)
	}
	err := writeArtifacts(filepath.Join(blocker, "nested"), time.Now(), report.Report{})
	if err == nil {
		t.Fatal("expected error when the directory cannot be created")
	}
}
