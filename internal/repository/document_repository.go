// Package repository holds the process-wide document registry.
package repository

import (
	"sync"

	"pdf-chat-go/internal/model"
)

// DocumentRepository maps document identifiers to their records. The mapping
// lives in process memory only and is lost on restart; that limitation is
// part of the service contract, not an oversight.
type DocumentRepository interface {
	// Register inserts the record unconditionally. Identifier uniqueness is
	// the caller's responsibility (identifiers are freshly generated tokens).
	Register(doc *model.Document)
	// Lookup returns the record for id, or false when the id is unknown.
	Lookup(id string) (*model.Document, bool)
	// Count returns the number of registered documents.
	Count() int
}

type documentRepository struct {
	mu   sync.RWMutex
	docs map[string]*model.Document
}

// NewDocumentRepository creates an empty in-memory registry.
func NewDocumentRepository() DocumentRepository {
	return &documentRepository{docs: make(map[string]*model.Document)}
}

func (r *documentRepository) Register(doc *model.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
}

func (r *documentRepository) Lookup(id string) (*model.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	return doc, ok
}

func (r *documentRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
