// Package discovery provides Python file discovery with glob pattern support.
package discovery

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// FileNotFoundError reports an explicit input path that does not exist.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error {
	return e.Err
}

// DiscoveredFile represents a Python file found during discovery.
type DiscoveredFile struct {
	// Path is the path to the file.
	// For explicit file inputs, this preserves the original path (relative or absolute).
	// For discovered files (from directories/globs), this is an absolute path.
	Path string

	// ConfigRoot is the directory to use for config file discovery.
	// This is typically the directory containing the file.
	ConfigRoot string
}

// Options configures file discovery behavior.
type Options struct {
	// Patterns are the glob patterns to match (default: DefaultPatterns()).
	// Supports doublestar patterns like "**/*.py".
	Patterns []string

	// ExcludePatterns are glob patterns to exclude from results.
	ExcludePatterns []string
}

// DefaultPatterns returns the default Python file patterns.
func DefaultPatterns() []string {
	return []string{"*.py"}
}

// DefaultExcludes returns exclusion patterns for directories that hold
// generated or third-party Python code.
func DefaultExcludes() []string {
	return []string{
		"**/venv/**",
		"**/.venv/**",
		"**/__pycache__/**",
		"**/node_modules/**",
		"**/.git/**",
		"**/dist/**",
		"**/build/**",
	}
}

// Discover finds Python files matching the given inputs.
// Each input can be:
// - A specific file path
// - A directory (searched recursively with default patterns)
// - A glob pattern (expanded with doublestar)
//
// An explicit path that does not exist yields a FileNotFoundError; a
// glob with no matches is not an error.
//
// Results are deduplicated by absolute path and sorted.
func Discover(inputs []string, opts Options) ([]DiscoveredFile, error) {
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns()
	}

	// Track seen paths to avoid duplicates
	seen := make(map[string]bool)
	var results []DiscoveredFile

	for _, input := range inputs {
		discovered, err := discoverInput(input, opts, seen)
		if err != nil {
			return nil, err
		}
		results = append(results, discovered...)
	}

	// Sort by path for deterministic output
	slices.SortFunc(results, func(a, b DiscoveredFile) int {
		return cmp.Compare(a.Path, b.Path)
	})

	return results, nil
}

// discoverInput processes a single input (file, directory, or glob pattern).
func discoverInput(input string, opts Options, seen map[string]bool) ([]DiscoveredFile, error) {
	// Glob characters bypass os.Stat, which fails on Windows for paths
	// containing * and friends.
	if containsGlobChars(input) {
		return discoverGlob(input, opts, seen)
	}

	info, err := os.Stat(input)
	if err == nil {
		if info.IsDir() {
			return discoverDirectory(input, opts, seen)
		}
		return discoverFile(input, opts, seen)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	return nil, &FileNotFoundError{Path: input, Err: err}
}

// containsGlobChars returns true if the path contains glob special characters.
func containsGlobChars(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', ']':
			return true
		}
	}
	return false
}

// discoverFile processes a specific file path.
// Preserves the original path format (relative or absolute) for user-provided inputs.
func discoverFile(path string, opts Options, seen map[string]bool) ([]DiscoveredFile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if isExcluded(absPath, opts.ExcludePatterns) {
		return nil, nil
	}
	if seen[absPath] {
		return nil, nil
	}
	seen[absPath] = true

	df := DiscoveredFile{
		Path:       path, // Preserve original (might be relative)
		ConfigRoot: filepath.Dir(absPath),
	}
	return []DiscoveredFile{df}, nil
}

// discoverDirectory recursively searches a directory for Python files.
func discoverDirectory(dir string, opts Options, seen map[string]bool) ([]DiscoveredFile, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var results []DiscoveredFile

	// Build all patterns to check (recursive + direct)
	var patterns []string
	for _, pattern := range opts.Patterns {
		patterns = append(patterns,
			filepath.Join(absDir, "**", pattern), // Recursive
			filepath.Join(absDir, pattern),       // Direct
		)
	}

	for _, pattern := range patterns {
		discovered, err := globMatches(pattern, opts, seen)
		if err != nil {
			return nil, err
		}
		results = append(results, discovered...)
	}

	return results, nil
}

// globMatches expands a glob pattern and returns matching files.
func globMatches(pattern string, opts Options, seen map[string]bool) ([]DiscoveredFile, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	var results []DiscoveredFile

	for _, match := range matches {
		absPath, err := filepath.Abs(match)
		if err != nil {
			return nil, err
		}

		if isExcluded(absPath, opts.ExcludePatterns) {
			continue
		}
		if seen[absPath] {
			continue
		}
		seen[absPath] = true

		results = append(results, DiscoveredFile{
			Path:       absPath,
			ConfigRoot: filepath.Dir(absPath),
		})
	}

	return results, nil
}

// discoverGlob expands a glob pattern and returns matching files.
func discoverGlob(pattern string, opts Options, seen map[string]bool) ([]DiscoveredFile, error) {
	return globMatches(pattern, opts, seen)
}

// isExcluded checks if a path matches any exclusion pattern:
//
//  1. Match against the full absolute path (for absolute patterns)
//  2. Match against just the filename (for simple patterns like "*_test.py")
//  3. Match against each suffix subpath (for relative patterns like
//     "venv/*" or "build/**", which should hit that directory at any depth)
//
// Note: doublestar.Match expects forward slashes even on Windows, so all
// paths are normalized before matching.
func isExcluded(absPath string, excludePatterns []string) bool {
	absPathSlash := filepath.ToSlash(absPath)
	base := filepath.ToSlash(filepath.Base(absPath))

	for _, pattern := range excludePatterns {
		pattern = filepath.ToSlash(pattern)

		matched, err := doublestar.Match(pattern, absPathSlash)
		if err == nil && matched {
			return true
		}

		matched, err = doublestar.Match(pattern, base)
		if err == nil && matched {
			return true
		}

		parts := splitPath(absPath)
		for i := range parts {
			subpath := filepath.ToSlash(filepath.Join(parts[i:]...))
			matched, err = doublestar.Match(pattern, subpath)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// splitPath splits a path into its individual directory and filename
// components. On Windows the drive letter is stripped.
func splitPath(path string) []string {
	var parts []string
	for path != "" {
		dir, file := filepath.Split(path)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		path = filepath.Clean(dir)

		// Stop at Unix root or current directory
		if path == "/" || path == "." {
			break
		}
		// Stop at Windows drive root (e.g., "C:\")
		if len(path) <= 3 && filepath.VolumeName(path) != "" {
			break
		}
		if path == dir {
			break
		}
	}
	return parts
}
