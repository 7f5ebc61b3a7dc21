package chunker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	symbolRe     = regexp.MustCompile(`[^\w\s.,;:!?\-()\[\]{}]`)
	pageMarkerRe = regexp.MustCompile(`--- Page (\d+) ---`)
)

// Chunker splits normalized document text into overlapping word windows.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. Overlap must be strictly smaller than size,
// otherwise the sliding window would never advance.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got size=%d overlap=%d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured words-per-chunk window.
func (c *Chunker) Size() int { return c.size }

// Normalize collapses whitespace, strips unsupported symbols and flattens
// line breaks. Idempotent: normalizing normalized text is a no-op.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = symbolRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Split chunks normalized text into an ordered sequence of DocumentChunk.
// Chunk IDs derive from the source identifier and window position, so they
// are unique across a run as long as sources are. Page markers left by the
// extractor assign each chunk the page it starts on.
func (c *Chunker) Split(text, source string) []model.DocumentChunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []model.DocumentChunk
	page := 0
	stride := c.size - c.overlap
	for i := 0; i < len(words); i += stride {
		end := i + c.size
		if end > len(words) {
			end = len(words)
		}
		window := words[i:end]
		if m := pageMarkerRe.FindStringSubmatch(strings.Join(window, " ")); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && page == 0 {
				page = n
			}
		}
		content := stripPageMarkers(strings.Join(window, " "))
		if strings.TrimSpace(content) == "" {
			if end == len(words) {
				break
			}
			continue
		}
		chunks = append(chunks, model.DocumentChunk{
			ID:             fmt.Sprintf("%s_%d", source, len(chunks)),
			Content:        content,
			ChunkIndex:     len(chunks),
			DocumentSource: source,
			PageNumber:     page,
		})
		if m := lastPageMarker(strings.Join(window, " ")); m > 0 {
			page = m
		}
		if end == len(words) {
			break
		}
	}
	return chunks
}

func stripPageMarkers(s string) string {
	s = pageMarkerRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func lastPageMarker(s string) int {
	ms := pageMarkerRe.FindAllStringSubmatch(s, -1)
	if len(ms) == 0 {
		return 0
	}
	n, err := strconv.Atoi(ms[len(ms)-1][1])
	if err != nil {
		return 0
	}
	return n
}
