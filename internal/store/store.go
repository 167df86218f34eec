// Package store is the document-store boundary used by the admin and
// airdrop surfaces. The accounting core never touches it; it exists so
// those callers depend on a narrow CRUD interface instead of a vendor
// SDK. Memory is the in-process implementation used by tests and mock
// runs.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Collection names used by the admin surfaces.
const (
	CollectionSubmissions = "submissions"
	CollectionTasks       = "tasks"
	CollectionConfig      = "config"
)

// ErrNotFound reports a missing document.
var ErrNotFound = errors.New("document not found")

// Document is one stored record. Data is schemaless; the store does
// not interpret it.
type Document struct {
	ID        string
	Data      map[string]any
	UpdatedAt time.Time
}

// Store is the CRUD surface. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Put(ctx context.Context, collection string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]Document, error)
}

// Memory keeps documents in process memory.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]map[string]Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{cols: make(map[string]map[string]Document)}
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.cols[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return clone(doc), nil
}

// Put implements Store. An empty ID is rejected; an existing document
// with the same ID is replaced.
func (m *Memory) Put(ctx context.Context, collection string, doc Document) error {
	if doc.ID == "" {
		return errors.New("document id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.cols[collection]
	if !ok {
		col = make(map[string]Document)
		m.cols[collection] = col
	}
	doc.UpdatedAt = time.Now().UTC()
	col[doc.ID] = clone(doc)
	return nil
}

// Delete implements Store. Deleting a missing document is not an
// error.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cols[collection], id)
	return nil
}

// List implements Store. Documents come back ordered by ID.
func (m *Memory) List(ctx context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col := m.cols[collection]
	docs := make([]Document, 0, len(col))
	for _, doc := range col {
		docs = append(docs, clone(doc))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// clone guards the store's copy against caller mutation of Data.
func clone(doc Document) Document {
	if doc.Data == nil {
		return doc
	}
	data := make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		data[k] = v
	}
	doc.Data = data
	return doc
}

var _ Store = (*Memory)(nil)
