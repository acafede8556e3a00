// Package chunker provides a line-aligned text chunker.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/plancheck/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// overlapLineWidth converts the character overlap into a line budget:
// at most overlap/overlapLineWidth trailing lines are carried over.
const overlapLineWidth = 50

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into chunks on line boundaries.
// Consecutive chunks share up to overlap characters of trailing lines.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split returns trimmed, non-empty chunks in document order.
// A line longer than the chunk size becomes its own oversized chunk.
func (p *Processor) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		chunks []string
		buf    buffer
	)

	for _, line := range strings.Split(text, "\n") {
		if !buf.empty() && buf.lenWith(line) > p.chunkSize {
			if chunk := buf.text(); chunk != "" {
				chunks = append(chunks, chunk)
			}
			buf = buf.tail(p.overlap/overlapLineWidth, p.overlap)
			for !buf.empty() && buf.lenWith(line) > p.chunkSize {
				buf = buf.dropFirst()
			}
		}
		buf.add(line)
	}

	if chunk := buf.text(); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// buffer accumulates lines and tracks their joined length in characters.
type buffer struct {
	lines []string
	size  int
}

func (b *buffer) empty() bool {
	return len(b.lines) == 0
}

// lenWith is the joined length after appending line.
func (b *buffer) lenWith(line string) int {
	n := b.size + utf8.RuneCountInString(line)
	if !b.empty() {
		n++ // newline separator
	}
	return n
}

func (b *buffer) add(line string) {
	b.size = b.lenWith(line)
	b.lines = append(b.lines, line)
}

func (b *buffer) text() string {
	return strings.TrimSpace(strings.Join(b.lines, "\n"))
}

// tail returns a buffer seeded with at most maxLines trailing lines
// whose joined length does not exceed maxChars.
func (b *buffer) tail(maxLines, maxChars int) buffer {
	start := len(b.lines)
	size := 0
	for i := len(b.lines) - 1; i >= 0 && len(b.lines)-i <= maxLines; i-- {
		n := utf8.RuneCountInString(b.lines[i])
		if start < len(b.lines) {
			n++
		}
		if size+n > maxChars {
			break
		}
		size += n
		start = i
	}

	return newBuffer(b.lines[start:])
}

// dropFirst returns the buffer without its first line.
func (b *buffer) dropFirst() buffer {
	return newBuffer(b.lines[1:])
}

func newBuffer(lines []string) buffer {
	buf := buffer{}
	for _, line := range lines {
		buf.add(line)
	}
	return buf
}
