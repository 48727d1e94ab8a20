package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pagemail/pagemail/internal/report"
)

// writeArtifacts keeps a dated copy of the rendered digest under dir:
// the plain-text body, the HTML document, a PDF rendering, and a
// SHA256SUMS index over the directory. Reruns on the same day
// overwrite that day's files.
func writeArtifacts(dir string, now time.Time, rep report.Report) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir artifact dir: %w", err)
	}

	stem := "digest-" + now.Format("2006-01-02")
	if err := os.WriteFile(filepath.Join(dir, stem+".txt"), []byte(rep.Text), 0o644); err != nil {
		return fmt.Errorf("write text digest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stem+".html"), []byte(rep.HTML), 0o644); err != nil {
		return fmt.Errorf("write html digest: %w", err)
	}
	if err := writeDigestPDF(rep.Text, filepath.Join(dir, stem+".pdf")); err != nil {
		return fmt.Errorf("write pdf digest: %w", err)
	}
	if err := writeSHA256SUMS(dir); err != nil {
		return fmt.Errorf("write checksums: %w", err)
	}
	return nil
}

// writeSHA256SUMS indexes every regular file in dir in the usual
// sha256sum layout, excluding the index itself.
func writeSHA256SUMS(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, e := range entries {
		if e.IsDir() || e.Name() == "SHA256SUMS" {
			continue
		}
		sum, err := sha256File(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		b.WriteString(sum)
		b.WriteString("  ")
		b.WriteString(e.Name())
		b.WriteString("\n")
	}
	return os.WriteFile(filepath.Join(dir, "SHA256SUMS"), []byte(b.String()), 0o644)
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
