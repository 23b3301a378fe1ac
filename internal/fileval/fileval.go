// Package fileval provides pre-scan file validation checks.
//
// These checks run before a file is handed to the fuzzing engine to fail
// fast on files that clearly aren't scannable Python sources: binary
// files and oversized files.
package fileval

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// FileTooLargeError is returned when a file exceeds the configured maximum size.
type FileTooLargeError struct {
	Path    string
	Size    int64
	MaxSize int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf(
		"file too large (%d > %d bytes); increase [discovery] max-file-size in .edgecheck.toml to override",
		e.Size, e.MaxSize,
	)
}

// NotUTF8Error is returned when a file does not appear to be valid UTF-8 text.
type NotUTF8Error struct {
	Path string
}

func (e *NotUTF8Error) Error() string {
	return "file does not appear to be valid UTF-8 text"
}

// utf8CheckLimit bounds how much of a file the UTF-8 smoke check reads.
const utf8CheckLimit = 256 * 1024

// ValidateFile runs pre-scan validation checks on a file:
//  1. Maximum size check (when maxSize > 0)
//  2. UTF-8 smoke check over the leading bytes
func ValidateFile(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if maxSize > 0 && info.Size() > maxSize {
		return &FileTooLargeError{Path: path, Size: info.Size(), MaxSize: maxSize}
	}

	ok, err := LooksUTF8(path, utf8CheckLimit)
	if err != nil {
		return err
	}
	if !ok {
		return &NotUTF8Error{Path: path}
	}
	return nil
}

const chunkSize = 32 * 1024 // 32 KB

// LooksUTF8 checks whether the file at path appears to contain valid UTF-8
// text. It reads in 32 KB chunks, carrying up to 3 trailing bytes between
// reads to handle code points split across chunk boundaries. It stops after
// maxBytes and fails fast on the first definitely-invalid chunk.
func LooksUTF8(path string, maxBytes int64) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	var carry []byte // up to 3 bytes from previous read
	var totalRead int64

	for maxBytes <= 0 || totalRead < maxBytes {
		n, readErr := f.Read(buf)
		if n == 0 && readErr != nil {
			if readErr == io.EOF {
				if len(carry) > 0 && !utf8.Valid(carry) {
					return false, nil
				}
				break
			}
			return false, readErr
		}

		totalRead += int64(n)
		chunk := append(carry, buf[:n]...) //nolint:gocritic // carry is consumed each round

		// Hold back a possibly-split trailing code point.
		hold := 0
		for hold < 3 && hold < len(chunk) {
			r, size := utf8.DecodeLastRune(chunk[:len(chunk)-hold])
			if r != utf8.RuneError || size > 1 {
				break
			}
			hold++
		}

		if !utf8.Valid(chunk[:len(chunk)-hold]) {
			return false, nil
		}
		carry = append([]byte(nil), chunk[len(chunk)-hold:]...)

		if readErr == io.EOF {
			if len(carry) > 0 && !utf8.Valid(carry) {
				return false, nil
			}
			break
		}
	}

	return true, nil
}
