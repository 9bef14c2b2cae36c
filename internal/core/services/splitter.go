package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkSize is the default chunk size in characters.
// Sizes are measured in Unicode code points, not bytes or tokens.
const DefaultMaxChunkSize = 1000

// paragraphBreak matches a run of one or more blank lines.
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n[\s]*`)

// Splitter splits document text into chunks along paragraph boundaries.
//
// Text is divided into paragraphs at blank-line runs, then paragraphs are
// greedily accumulated: a chunk is flushed when appending the next paragraph
// would push it past the size limit. A single paragraph longer than the limit
// is never split further; it becomes its own oversized chunk.
type Splitter struct {
	maxChunkSize int
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithMaxChunkSize sets the chunk size limit in characters.
func WithMaxChunkSize(size int) SplitterOption {
	return func(s *Splitter) {
		if size > 0 {
			s.maxChunkSize = size
		}
	}
}

// NewSplitter creates a Splitter with the given options.
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{maxChunkSize: DefaultMaxChunkSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxChunkSize returns the configured chunk size limit.
func (s *Splitter) MaxChunkSize() int {
	return s.maxChunkSize
}

// Split returns the ordered chunks of text. Empty or blank input yields no
// chunks. A document without blank lines yields exactly one chunk regardless
// of length.
func (s *Splitter) Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	paragraphs := paragraphBreak.Split(text, -1)

	var chunks []string
	var buf strings.Builder
	bufLen := 0

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		paraLen := utf8.RuneCountInString(paragraph)
		if bufLen > 0 && bufLen+paraLen > s.maxChunkSize {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
			bufLen = 0
		}

		buf.WriteString(paragraph)
		buf.WriteString("\n")
		bufLen += paraLen + 1
	}

	if bufLen > 0 {
		chunks = append(chunks, strings.TrimSpace(buf.String()))
	}

	return chunks
}
