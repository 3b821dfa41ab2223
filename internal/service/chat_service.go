package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pdf-chat-go/internal/apperr"
	"pdf-chat-go/internal/config"
	"pdf-chat-go/internal/repository"
	"pdf-chat-go/internal/util"
	"pdf-chat-go/pkg/llm"
	"pdf-chat-go/pkg/log"
)

// ChatService answers questions against an ingested document.
type ChatService interface {
	// Answer retrieves the most relevant chunks for the question and
	// generates a grounded answer. Unknown ids surface as
	// document-not-found before any retrieval or generation happens.
	// Generation runs under the same bounded rate-limit retry policy as
	// embedding.
	Answer(ctx context.Context, docID string, question string) (string, error)
	// StreamAnswer does the same but streams the answer through writer.
	StreamAnswer(ctx context.Context, docID string, question string, writer llm.MessageWriter) error
}

type chatService struct {
	searchService SearchService
	llmClient     llm.Client
	docRepo       repository.DocumentRepository
	retryCfg      config.RetryConfig
}

// NewChatService creates a new ChatService instance.
func NewChatService(searchService SearchService, llmClient llm.Client, docRepo repository.DocumentRepository, retryCfg config.RetryConfig) ChatService {
	return &chatService{
		searchService: searchService,
		llmClient:     llmClient,
		docRepo:       docRepo,
		retryCfg:      retryCfg,
	}
}

func (s *chatService) Answer(ctx context.Context, docID string, question string) (string, error) {
	chunks, err := s.retrieve(ctx, docID, question)
	if err != nil {
		return "", err
	}

	var answer string
	err = util.RetryRateLimited(ctx, s.retryCfg.MaxAttempts,
		time.Duration(s.retryCfg.DefaultBackoffSeconds)*time.Second,
		func() error {
			var err error
			answer, err = s.llmClient.Answer(ctx, chunks, question)
			return err
		})
	if err != nil {
		log.Errorw("[ChatService] answer generation failed", "docID", docID, "error", err)
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (s *chatService) StreamAnswer(ctx context.Context, docID string, question string, writer llm.MessageWriter) error {
	chunks, err := s.retrieve(ctx, docID, question)
	if err != nil {
		return err
	}

	// Rate limits surface from the initial request, before any frame is
	// written, so retrying the whole call never duplicates output.
	err = util.RetryRateLimited(ctx, s.retryCfg.MaxAttempts,
		time.Duration(s.retryCfg.DefaultBackoffSeconds)*time.Second,
		func() error {
			return s.llmClient.StreamAnswer(ctx, chunks, question, writer)
		})
	if err != nil {
		log.Errorw("[ChatService] streamed answer generation failed", "docID", docID, "error", err)
		return err
	}
	return nil
}

// retrieve checks the registry and the index independently: an id can be
// missing from either under partial failure, and the two conditions are
// reported as distinct kinds.
func (s *chatService) retrieve(ctx context.Context, docID string, question string) ([]string, error) {
	if _, ok := s.docRepo.Lookup(docID); !ok {
		return nil, apperr.New(apperr.KindDocumentNotFound,
			fmt.Sprintf("PDF not found: %s", docID))
	}

	chunks, err := s.searchService.Retrieve(ctx, question, docID)
	if err != nil {
		if apperr.Is(err, apperr.KindDocumentNotIndexed) {
			// Registered but no index on disk: registry/index inconsistency.
			log.Errorw("[ChatService] registered document has no index",
				"docID", docID, "error", err)
		}
		return nil, err
	}
	return chunks, nil
}
