// Package processor provides a composable finding processing pipeline.
//
// The processor chain pattern is inspired by golangci-lint's approach:
// findings flow through a sequence of processors, each transforming
// the slice (filtering, modifying, or augmenting).
//
// Standard pipeline order:
//  1. Normalization - Clamp out-of-range positions, default codes
//  2. SuppressionFilter - Apply # edgecheck: ignore ... markers
//  3. Deduplication - Remove duplicate findings
//  4. Sorting - Stable output ordering
package processor

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/edgecheck/edgecheck-go/internal/finding"
	"github.com/edgecheck/edgecheck-go/internal/sourcemap"
)

// Processor transforms a slice of findings.
// Implementations should be stateless where possible, using Context for shared state.
type Processor interface {
	// Name returns the processor's identifier (for debugging/logging).
	Name() string

	// Process applies the processor's logic to findings.
	// Returns the transformed slice (may be same, filtered, or modified).
	// Must not modify the input slice; return a new slice if filtering.
	Process(findings []finding.Finding, ctx *Context) []finding.Finding
}

// Context provides shared state for processors.
// Populated once before running the chain, then passed to each processor.
type Context struct {
	// FileSources maps file paths to their raw source content.
	// Pre-populated for in-editor documents; files not present are read
	// from disk on demand.
	FileSources map[string][]byte

	// Logger receives per-file diagnostics (unreadable sources, unused markers).
	Logger logrus.FieldLogger

	// sourceMaps caches parsed source maps by file path.
	// Lazily populated by GetSourceMap.
	sourceMaps map[string]*sourcemap.SourceMap

	// unreadable records files that could not be read, so each is logged once.
	unreadable map[string]bool
}

// NewContext creates a new processor context.
func NewContext(fileSources map[string][]byte, logger logrus.FieldLogger) *Context {
	if fileSources == nil {
		fileSources = make(map[string][]byte)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Context{
		FileSources: fileSources,
		Logger:      logger,
		sourceMaps:  make(map[string]*sourcemap.SourceMap),
		unreadable:  make(map[string]bool),
	}
}

// GetSourceMap returns or creates a SourceMap for the given file.
// Content comes from FileSources when present, otherwise from disk.
// Returns nil if the file cannot be read; the failure is logged once.
func (ctx *Context) GetSourceMap(file string) *sourcemap.SourceMap {
	if sm, ok := ctx.sourceMaps[file]; ok {
		return sm
	}
	if ctx.unreadable[file] {
		return nil
	}

	source, ok := ctx.FileSources[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err != nil {
			ctx.unreadable[file] = true
			ctx.Logger.WithField("file", file).WithError(err).
				Warn("cannot read source for suppression check")
			return nil
		}
		source = data
		ctx.FileSources[file] = data
	}

	sm := sourcemap.New(source)
	ctx.sourceMaps[file] = sm
	return sm
}

// Chain runs processors in sequence.
type Chain struct {
	processors []Processor
}

// NewChain creates a new processor chain.
func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// Process runs all processors in sequence.
func (c *Chain) Process(findings []finding.Finding, ctx *Context) []finding.Finding {
	for _, p := range c.processors {
		findings = p.Process(findings, ctx)
	}
	return findings
}

// Standard returns the default processor chain.
func Standard() *Chain {
	return NewChain(
		NewNormalization(),
		NewSuppressionFilter(),
		NewDeduplication(),
		NewSorting(),
	)
}

// filterFindings is a helper for processors that filter findings.
// It returns a new slice containing only findings where keep() returns true.
func filterFindings(findings []finding.Finding, keep func(f finding.Finding) bool) []finding.Finding {
	result := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		if keep(f) {
			result = append(result, f)
		}
	}
	return result
}

// transformFindings is a helper for processors that modify findings.
// It returns a new slice with each finding transformed by transform().
func transformFindings(
	findings []finding.Finding,
	transform func(f finding.Finding) finding.Finding,
) []finding.Finding {
	result := make([]finding.Finding, len(findings))
	for i, f := range findings {
		result[i] = transform(f)
	}
	return result
}
