// Package pipeline builds per-document vector indexes.
package pipeline

import (
	"context"
	"time"

	"pdf-chat-go/internal/apperr"
	"pdf-chat-go/internal/chunker"
	"pdf-chat-go/internal/config"
	"pdf-chat-go/internal/util"
	"pdf-chat-go/internal/vectorstore"
	"pdf-chat-go/pkg/embedding"
	"pdf-chat-go/pkg/log"
)

// Processor turns document text into a persisted similarity index.
type Processor struct {
	splitter        *chunker.Splitter
	embeddingClient embedding.Client
	store           *vectorstore.Store
	retryCfg        config.RetryConfig
}

// NewProcessor creates a new Processor instance.
func NewProcessor(
	splitter *chunker.Splitter,
	embeddingClient embedding.Client,
	store *vectorstore.Store,
	retryCfg config.RetryConfig,
) *Processor {
	return &Processor{
		splitter:        splitter,
		embeddingClient: embeddingClient,
		store:           store,
		retryCfg:        retryCfg,
	}
}

// Process chunks the text, embeds every chunk, and persists the index under
// docID, replacing any previous index for the same identifier. It returns
// the number of indexed chunks. No partial index is ever left visible: the
// store installs the new index only after every chunk was written.
func (p *Processor) Process(ctx context.Context, docID string, text string) (int, error) {
	log.Infof("[Processor] building index, docID: %s, text length: %d", docID, len(text))

	chunks := p.splitter.Split(text)
	if len(chunks) == 0 {
		return 0, apperr.New(apperr.KindIndexingFailure, "no text chunks produced")
	}
	log.Infof("[Processor] split into %d chunks, docID: %s", len(chunks), docID)

	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := p.embed(ctx, chunk)
		if err != nil {
			log.Errorw("[Processor] chunk embedding failed",
				"docID", docID, "chunk", i, "error", err)
			if apperr.Is(err, apperr.KindRateLimited) {
				// Keep the rate-limited kind visible so the caller can give
				// it dedicated client messaging.
				return 0, err
			}
			return 0, apperr.Wrap(apperr.KindIndexingFailure, "failed to embed chunk", err)
		}
		vectors = append(vectors, vector)
	}

	if err := p.store.Build(ctx, docID, chunks, vectors); err != nil {
		log.Errorw("[Processor] index persistence failed", "docID", docID, "error", err)
		return 0, apperr.Wrap(apperr.KindIndexingFailure, "failed to persist index", err)
	}

	log.Infof("[Processor] index built, docID: %s, chunks: %d", docID, len(chunks))
	return len(chunks), nil
}

// embed calls the embedding service under the bounded rate-limit retry
// policy.
func (p *Processor) embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := util.RetryRateLimited(ctx, p.retryCfg.MaxAttempts,
		time.Duration(p.retryCfg.DefaultBackoffSeconds)*time.Second,
		func() error {
			var err error
			vector, err = p.embeddingClient.CreateEmbedding(ctx, text)
			return err
		})
	return vector, err
}
