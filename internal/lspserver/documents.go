package lspserver

import "sync"

// Document is an open editor buffer tracked by the server.
type Document struct {
	URI        string
	Path       string
	LanguageID string
	Version    int32
	Content    string
}

// DocumentStore tracks open documents keyed by URI.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open registers a newly opened document.
func (s *DocumentStore) Open(uri, languageID string, version int32, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &Document{
		URI:        uri,
		Path:       uriToPath(uri),
		LanguageID: languageID,
		Version:    version,
		Content:    text,
	}
}

// Update replaces a document's content. A zero version keeps the
// previous one (didSave carries no version).
func (s *DocumentStore) Update(uri string, version int32, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri, Path: uriToPath(uri)}
		s.docs[uri] = doc
	}
	if version != 0 {
		doc.Version = version
	}
	doc.Content = text
}

// Close removes a document.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Get returns a snapshot of the document, or nil if not open.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return nil
	}
	snapshot := *doc
	return &snapshot
}
