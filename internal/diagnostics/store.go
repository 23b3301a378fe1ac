package diagnostics

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/edgecheck/edgecheck-go/internal/finding"
	"github.com/edgecheck/edgecheck-go/internal/processor"
)

// Counts aggregates the current annotation state by severity.
// Recomputed from a full scan on demand, not tracked incrementally,
// so partial updates can never leave it drifted.
type Counts struct {
	Errors   int
	Warnings int
	Infos    int
	Hints    int
	Total    int
}

// Store holds the current per-file annotation state.
// All methods are safe for concurrent use. Concurrent publishes for the
// same file resolve as last-write-wins; a publish replaces a file's entry
// wholesale, never merges into it.
type Store struct {
	mu          sync.Mutex
	annotations map[string][]Annotation

	coalesce bool
	logger   logrus.FieldLogger
}

// NewStore creates an empty annotation store.
// When coalesce is true, published findings pass through the overlap
// coalescer before becoming annotations.
func NewStore(coalesce bool, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		annotations: make(map[string][]Annotation),
		coalesce:    coalesce,
		logger:      logger,
	}
}

// Publish processes raw findings and replaces the annotation state for
// every file present in the batch. Files not mentioned keep their
// existing annotations. It never fails: malformed fields are normalized
// away and unreadable sources skip suppression checking.
//
// sources optionally provides in-memory document content (e.g. unsaved
// editor buffers) keyed by the paths findings use; files not present are
// read from disk.
func (s *Store) Publish(findings []finding.Finding, sources map[string][]byte) {
	// Group raw findings by absolute file path
	byFile := make(map[string][]finding.Finding)
	for _, f := range findings {
		key := f.AbsFile()
		byFile[key] = append(byFile[key], f)
	}

	// Copy sources so a shared map is never mutated across publishes
	fileSources := make(map[string][]byte, len(sources))
	for name, content := range sources {
		fileSources[name] = content
	}

	chain := processor.Standard()
	ctx := processor.NewContext(fileSources, s.logger)

	processed := make(map[string][]Annotation, len(byFile))
	for file, group := range byFile {
		survivors := chain.Process(group, ctx)
		if s.coalesce {
			processed[file] = Coalesce(survivors)
		} else {
			processed[file] = Passthrough(survivors)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for file, anns := range processed {
		s.annotations[file] = anns
	}
}

// ClearAll drops every annotation. Distinct from Publish: publishing an
// empty batch touches nothing.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations = make(map[string][]Annotation)
}

// ClearFile drops the annotations for a single file.
func (s *Store) ClearFile(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.annotations, file)
}

// ForFile returns a copy of the annotations for a file.
func (s *Store) ForFile(file string) []Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	anns := s.annotations[file]
	out := make([]Annotation, len(anns))
	copy(out, anns)
	return out
}

// Files returns the sorted list of files with annotations.
func (s *Store) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := make([]string, 0, len(s.annotations))
	for file := range s.annotations {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Counts scans the full current state and tallies annotations by severity.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Counts
	for _, anns := range s.annotations {
		for _, a := range anns {
			switch a.Severity {
			case finding.SeverityError:
				c.Errors++
			case finding.SeverityWarning:
				c.Warnings++
			case finding.SeverityInfo:
				c.Infos++
			case finding.SeverityHint:
				c.Hints++
			}
			c.Total++
		}
	}
	return c
}
