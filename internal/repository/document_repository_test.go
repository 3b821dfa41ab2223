package repository

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-chat-go/internal/model"
)

func TestRegisterAndLookup(t *testing.T) {
	repo := NewDocumentRepository()

	_, ok := repo.Lookup("missing")
	assert.False(t, ok)

	repo.Register(&model.Document{ID: "doc-1", FileName: "report.pdf", PageCount: 3})

	doc, ok := repo.Lookup("doc-1")
	require.True(t, ok)
	assert.Equal(t, "report.pdf", doc.FileName)
	assert.Equal(t, 3, doc.PageCount)
	assert.Equal(t, 1, repo.Count())
}

func TestRegisterOverwrites(t *testing.T) {
	repo := NewDocumentRepository()
	repo.Register(&model.Document{ID: "doc-1", FileName: "old.pdf"})
	repo.Register(&model.Document{ID: "doc-1", FileName: "new.pdf"})

	doc, ok := repo.Lookup("doc-1")
	require.True(t, ok)
	assert.Equal(t, "new.pdf", doc.FileName)
	assert.Equal(t, 1, repo.Count())
}

func TestConcurrentAccess(t *testing.T) {
	repo := NewDocumentRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		id := fmt.Sprintf("doc-%d", i)
		go func() {
			defer wg.Done()
			repo.Register(&model.Document{ID: id})
		}()
		go func() {
			defer wg.Done()
			repo.Lookup(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, repo.Count())
}
