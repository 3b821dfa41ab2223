// Package model holds the data structures shared across layers.
package model

// Document is the record kept for every successfully ingested PDF.
// It is immutable once registered and lives for the process lifetime.
type Document struct {
	ID        string `json:"pdf_id"`
	FileName  string `json:"file_name"`
	Size      int64  `json:"size"`
	Content   string `json:"content"`
	Metadata  string `json:"metadata"`
	PageCount int    `json:"page_count"`
}
