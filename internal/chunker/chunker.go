// Package chunker splits normalized document text into overlapping
// fixed-size segments suitable for embedding.
package chunker

// Default splitting parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Splitter produces chunks of at most chunkSize runes with a fixed overlap
// between consecutive chunks. Splitting is pure and deterministic.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a Splitter. Non-positive or inconsistent parameters
// fall back to the defaults.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = 0
		}
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split cuts text into chunks. Each chunk ends at the most natural break
// found near the size limit: a paragraph break, then a line break, then a
// sentence end, then a word boundary, then a hard cut. The next chunk starts
// exactly chunkOverlap runes before the previous cut, so concatenating the
// chunks with overlaps removed reconstructs the input exactly.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		end := start + s.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := s.cutPoint(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - s.chunkOverlap
	}
	return chunks
}

// cutPoint picks the chunk end in (start+overlap, end]. Only the tail of the
// window is searched so chunks stay close to the size limit.
func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	floor := end - s.chunkSize/5
	if min := start + s.chunkOverlap + 1; floor < min {
		floor = min
	}

	// Paragraph break: cut right after the blank line.
	for i := end - 1; i > floor; i-- {
		if runes[i-1] == '\n' && runes[i] == '\n' {
			return i + 1
		}
	}
	// Line break.
	for i := end - 1; i >= floor; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	// Sentence end followed by a space.
	for i := end - 1; i > floor; i-- {
		if runes[i] == ' ' && isSentenceEnd(runes[i-1]) {
			return i + 1
		}
	}
	// Word boundary.
	for i := end - 1; i >= floor; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
