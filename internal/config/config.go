// Package config loads and holds the application configuration.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Conf is the global configuration, populated by Init.
var Conf Config

// Config mirrors the structure of config.yaml.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Index     IndexConfig     `mapstructure:"index"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// UploadConfig holds upload validation settings.
type UploadConfig struct {
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// ChunkingConfig holds text splitting parameters.
type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

// IndexConfig holds vector index storage settings.
type IndexConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// ExtractorConfig holds PDF extraction and OCR settings.
type ExtractorConfig struct {
	OCRLanguages  string `mapstructure:"ocr_languages"`
	TesseractPath string `mapstructure:"tesseract_path"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig holds large language model settings.
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig holds optional generation parameters.
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// RetryConfig bounds retries against rate-limited upstream services.
type RetryConfig struct {
	MaxAttempts           int `mapstructure:"max_attempts"`
	DefaultBackoffSeconds int `mapstructure:"default_backoff_seconds"`
}

// RetrievalConfig holds similarity search settings.
type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
}

// Init reads the YAML file at configPath and unmarshals it into Conf.
// API keys may reference environment variables with ${VAR} syntax.
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("failed to read config file: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}

	Conf.Embedding.APIKey = os.ExpandEnv(Conf.Embedding.APIKey)
	Conf.LLM.APIKey = os.ExpandEnv(Conf.LLM.APIKey)
}
