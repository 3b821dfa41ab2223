// Package service contains the business logic layer.
package service

import (
	"context"
	"time"

	"pdf-chat-go/internal/config"
	"pdf-chat-go/internal/util"
	"pdf-chat-go/internal/vectorstore"
	"pdf-chat-go/pkg/embedding"
	"pdf-chat-go/pkg/log"
)

// SearchService retrieves the document chunks most similar to a query.
type SearchService interface {
	// Retrieve embeds the query with the same embedding function used at
	// index time, loads the index persisted for docID, and returns the
	// top-K chunk texts ordered from most to least similar. A missing index
	// surfaces as the document-not-indexed kind.
	Retrieve(ctx context.Context, query string, docID string) ([]string, error)
}

type searchService struct {
	embeddingClient embedding.Client
	store           *vectorstore.Store
	retryCfg        config.RetryConfig
	topK            int
}

// NewSearchService creates a new SearchService instance.
func NewSearchService(embeddingClient embedding.Client, store *vectorstore.Store, retryCfg config.RetryConfig, topK int) SearchService {
	if topK <= 0 {
		topK = 4
	}
	return &searchService{
		embeddingClient: embeddingClient,
		store:           store,
		retryCfg:        retryCfg,
		topK:            topK,
	}
}

func (s *searchService) Retrieve(ctx context.Context, query string, docID string) ([]string, error) {
	var queryVector []float32
	err := util.RetryRateLimited(ctx, s.retryCfg.MaxAttempts,
		time.Duration(s.retryCfg.DefaultBackoffSeconds)*time.Second,
		func() error {
			var err error
			queryVector, err = s.embeddingClient.CreateEmbedding(ctx, query)
			return err
		})
	if err != nil {
		log.Errorw("[SearchService] query embedding failed", "docID", docID, "error", err)
		return nil, err
	}

	chunks, err := s.store.Search(ctx, docID, queryVector, s.topK)
	if err != nil {
		return nil, err
	}
	log.Infof("[SearchService] retrieved %d chunks, docID: %s", len(chunks), docID)
	return chunks, nil
}
