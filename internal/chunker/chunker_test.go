package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reconstruct joins chunks with the overlap of each follow-up chunk removed.
func reconstruct(chunks []string, overlap int) string {
	var b strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk)
		if i > 0 {
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func TestSplitEmpty(t *testing.T) {
	s := NewSplitter(1000, 100)
	assert.Nil(t, s.Split(""))
}

func TestSplitShortInputSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 100)
	chunks := s.Split("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitLongInputMultipleChunks(t *testing.T) {
	s := NewSplitter(1000, 100)
	text := strings.Repeat("This is a sample text. ", 100)
	chunks := s.Split(text)

	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 1000)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	inputs := []string{
		strings.Repeat("This is a sample text. ", 100),
		strings.Repeat("word ", 500),
		strings.Repeat("paragraph one.\n\nparagraph two.\n\n", 60),
		strings.Repeat("x", 2500),
		strings.Repeat("ünïcödé tëxt hërë. ", 150),
	}
	s := NewSplitter(1000, 100)
	for _, text := range inputs {
		chunks := s.Split(text)
		assert.Equal(t, text, reconstruct(chunks, 100))
	}
}

func TestSplitSizeBound(t *testing.T) {
	s := NewSplitter(200, 20)
	text := strings.Repeat("some words and a sentence end. ", 50)
	for _, chunk := range s.Split(text) {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 200)
	}
}

func TestSplitPrefersWordBoundary(t *testing.T) {
	// No paragraph or sentence breaks: chunks should still end on a space
	// rather than mid-word.
	s := NewSplitter(100, 10)
	text := strings.Repeat("alpha beta gamma delta ", 30)
	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, " "), "chunk should end at a word boundary: %q", chunk)
	}
}

func TestSplitHardCutWithoutBoundaries(t *testing.T) {
	s := NewSplitter(100, 10)
	text := strings.Repeat("x", 450)
	chunks := s.Split(text)

	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, text, reconstruct(chunks, 10))
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := NewSplitter(1000, 100)
	text := strings.Repeat("Deterministic output expected. ", 80)
	first := s.Split(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Split(text))
	}
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, -1)
	assert.Equal(t, DefaultChunkSize, s.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, s.chunkOverlap)

	// Overlap larger than size cannot be honored.
	s = NewSplitter(50, 60)
	assert.Equal(t, 50, s.chunkSize)
	assert.Equal(t, 0, s.chunkOverlap)
}
