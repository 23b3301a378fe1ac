package fileval

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFileOK(t *testing.T) {
	path := writeTemp(t, "ok.py", []byte("def f(x):\n    return x\n"))
	if err := ValidateFile(path, 1<<20); err != nil {
		t.Fatalf("ValidateFile() error = %v", err)
	}
}

func TestValidateFileTooLarge(t *testing.T) {
	path := writeTemp(t, "big.py", bytes.Repeat([]byte("x = 1\n"), 100))
	err := ValidateFile(path, 64)

	var tooLarge *FileTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected FileTooLargeError, got %v", err)
	}
	if tooLarge.MaxSize != 64 {
		t.Errorf("MaxSize = %d", tooLarge.MaxSize)
	}
}

func TestValidateFileZeroMaxDisablesSizeCheck(t *testing.T) {
	path := writeTemp(t, "big.py", bytes.Repeat([]byte("x = 1\n"), 100))
	if err := ValidateFile(path, 0); err != nil {
		t.Fatalf("ValidateFile() error = %v", err)
	}
}

func TestValidateFileBinary(t *testing.T) {
	path := writeTemp(t, "bin.py", []byte{0xff, 0xfe, 0x00, 0x01, 0x80, 0x81})
	err := ValidateFile(path, 1<<20)

	var notUTF8 *NotUTF8Error
	if !errors.As(err, &notUTF8) {
		t.Fatalf("expected NotUTF8Error, got %v", err)
	}
}

func TestValidateFileMissing(t *testing.T) {
	if err := ValidateFile(filepath.Join(t.TempDir(), "nope.py"), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLooksUTF8MultibyteAcrossChunks(t *testing.T) {
	// A multibyte rune landing exactly on the chunk boundary must not
	// trip the validity check.
	var b strings.Builder
	for b.Len() < chunkSize-1 {
		b.WriteString("a")
	}
	b.WriteString("é") // 2 bytes, split across the boundary
	b.WriteString(" suffix")

	path := writeTemp(t, "split.py", []byte(b.String()))
	ok, err := LooksUTF8(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("valid UTF-8 flagged as binary")
	}
}
