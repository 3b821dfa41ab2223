// Package main is the application entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"pdf-chat-go/internal/chunker"
	"pdf-chat-go/internal/config"
	"pdf-chat-go/internal/extractor"
	"pdf-chat-go/internal/handler"
	"pdf-chat-go/internal/middleware"
	"pdf-chat-go/internal/pipeline"
	"pdf-chat-go/internal/repository"
	"pdf-chat-go/internal/service"
	"pdf-chat-go/internal/vectorstore"
	"pdf-chat-go/pkg/embedding"
	"pdf-chat-go/pkg/llm"
	"pdf-chat-go/pkg/log"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	config.Init("./configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("logger initialized")

	store, err := vectorstore.NewStore(cfg.Index.DataDir)
	if err != nil {
		log.Fatal("failed to initialize vector store", err)
	}

	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)

	pdfExtractor := extractor.New(
		extractor.NewPDFParser(),
		extractor.NewFitzRenderer(),
		extractor.NewTesseractRecognizer(cfg.Extractor),
	)
	splitter := chunker.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	processor := pipeline.NewProcessor(splitter, embeddingClient, store, cfg.Retry)

	docRepo := repository.NewDocumentRepository()
	documentService := service.NewDocumentService(pdfExtractor, processor, docRepo)
	searchService := service.NewSearchService(embeddingClient, store, cfg.Retry, cfg.Retrieval.TopK)
	chatService := service.NewChatService(searchService, llmClient, docRepo, cfg.Retry)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.MaxMultipartMemory = 16 << 20

	r.GET("/", handler.Welcome(docRepo))

	apiV1 := r.Group("/v1")
	{
		pdfHandler := handler.NewPDFHandler(documentService, cfg.Upload.MaxFileSize)
		chatHandler := handler.NewChatHandler(chatService)

		apiV1.POST("/pdf", pdfHandler.Upload)
		apiV1.POST("/chat/:pdf_id", chatHandler.Chat)
		apiV1.GET("/chat/:pdf_id/stream", chatHandler.Stream)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("HTTP server shutdown failed", err)
	}

	log.Info("server stopped cleanly")
}
