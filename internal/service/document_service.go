package service

import (
	"context"

	"github.com/google/uuid"

	"pdf-chat-go/internal/extractor"
	"pdf-chat-go/internal/model"
	"pdf-chat-go/internal/repository"
	"pdf-chat-go/pkg/log"
)

// IndexBuilder builds and persists the vector index for a document.
type IndexBuilder interface {
	Process(ctx context.Context, docID string, text string) (int, error)
}

// TextExtractor extracts text and metadata from PDF bytes.
type TextExtractor interface {
	Extract(data []byte) (extractor.Result, error)
}

// DocumentService ingests uploaded PDFs.
type DocumentService interface {
	// Ingest extracts, indexes, and registers a document, returning its
	// fresh identifier. The document only becomes visible in the registry
	// after its index was persisted, so a returned id is always queryable.
	Ingest(ctx context.Context, fileName string, data []byte) (string, error)
}

type documentService struct {
	extractor TextExtractor
	builder   IndexBuilder
	docRepo   repository.DocumentRepository
}

// NewDocumentService creates a new DocumentService instance.
func NewDocumentService(ex TextExtractor, builder IndexBuilder, docRepo repository.DocumentRepository) DocumentService {
	return &documentService{
		extractor: ex,
		builder:   builder,
		docRepo:   docRepo,
	}
}

func (s *documentService) Ingest(ctx context.Context, fileName string, data []byte) (string, error) {
	docID := uuid.NewString()
	log.Infof("[DocumentService] ingesting %s, docID: %s, size: %d", fileName, docID, len(data))

	result, err := s.extractor.Extract(data)
	if err != nil {
		log.Errorw("[DocumentService] extraction failed",
			"docID", docID, "fileName", fileName, "error", err)
		return "", err
	}

	chunkCount, err := s.builder.Process(ctx, docID, result.Text)
	if err != nil {
		log.Errorw("[DocumentService] indexing failed",
			"docID", docID, "fileName", fileName, "error", err)
		return "", err
	}

	s.docRepo.Register(&model.Document{
		ID:        docID,
		FileName:  fileName,
		Size:      int64(len(data)),
		Content:   result.Text,
		Metadata:  result.Metadata.Serialize(),
		PageCount: extractor.PageCount(result.Text),
	})

	log.Infof("[DocumentService] ingested %s, docID: %s, pages: %d, chunks: %d",
		fileName, docID, extractor.PageCount(result.Text), chunkCount)
	return docID, nil
}
