package server

import (
	"sync"
	"time"

	"go.lsp.dev/protocol"
)

// document is the server's copy of an open text document.
type document struct {
	// text is the full current content.
	text string
	// version is the client's version number for text.
	version int32
	// timer is the pending debounced validation, if any.
	timer *time.Timer
}

// documentStore holds the open documents keyed by URI.
type documentStore struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentURI]*document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[protocol.DocumentURI]*document)}
}

// set stores text as the given version, creating the document if needed.
func (s *documentStore) set(uri protocol.DocumentURI, text string, version int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}
	doc.text = text
	doc.version = version
}

// get returns a snapshot of the document's text and version.
func (s *documentStore) get(uri protocol.DocumentURI) (text string, version int32, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return "", 0, false
	}
	return doc.text, doc.version, true
}

// current reports whether version is still the stored version of uri.
func (s *documentStore) current(uri protocol.DocumentURI, version int32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return ok && doc.version == version
}

// schedule replaces any pending validation of uri with fn, run after delay.
// It reports false when the document is not open.
func (s *documentStore) schedule(uri protocol.DocumentURI, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return false
	}
	if doc.timer != nil {
		doc.timer.Stop()
	}
	doc.timer = time.AfterFunc(delay, fn)
	return true
}

// remove forgets uri and cancels its pending validation.
func (s *documentStore) remove(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		if doc.timer != nil {
			doc.timer.Stop()
		}
		delete(s.docs, uri)
	}
}

// clear cancels every pending validation and forgets all documents.
func (s *documentStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uri, doc := range s.docs {
		if doc.timer != nil {
			doc.timer.Stop()
		}
		delete(s.docs, uri)
	}
}
