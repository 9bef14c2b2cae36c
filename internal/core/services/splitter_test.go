package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitterEmptyInput(t *testing.T) {
	s := NewSplitter()

	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   \n\n  \t\n"))
}

func TestSplitterSingleParagraph(t *testing.T) {
	s := NewSplitter()

	chunks := s.Split("Just one paragraph, no blank lines.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Just one paragraph, no blank lines.", chunks[0])
}

func TestSplitterAccumulatesUntilLimit(t *testing.T) {
	// Three paragraphs of ~400 characters each with a 1000 limit: the first
	// two share a chunk, the third flushes into its own.
	para := strings.Repeat("x", 400)
	text := para + "\n\n" + para + "\n\n" + para

	s := NewSplitter()
	chunks := s.Split(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, para+"\n"+para, chunks[0])
	assert.Equal(t, para, chunks[1])
}

func TestSplitterOversizedParagraphKeptWhole(t *testing.T) {
	// A single paragraph past the limit is never split further.
	big := strings.Repeat("y", 1500)

	s := NewSplitter()
	chunks := s.Split(big)

	require.Len(t, chunks, 1)
	assert.Equal(t, big, chunks[0])
}

func TestSplitterOversizedParagraphFlushesBuffer(t *testing.T) {
	small := strings.Repeat("a", 100)
	big := strings.Repeat("b", 1200)

	s := NewSplitter()
	chunks := s.Split(small + "\n\n" + big + "\n\n" + small)

	require.Len(t, chunks, 3)
	assert.Equal(t, small, chunks[0])
	assert.Equal(t, big, chunks[1])
	assert.Equal(t, small, chunks[2])
}

func TestSplitterNoBlankLinesYieldsOneChunk(t *testing.T) {
	// Consecutive lines without blank separators stay in one paragraph, even
	// past the size limit.
	line := strings.Repeat("z", 200)
	text := strings.Join([]string{line, line, line, line, line, line, line}, "\n")

	s := NewSplitter()
	chunks := s.Split(text)

	require.Len(t, chunks, 1)
}

func TestSplitterCRLFInput(t *testing.T) {
	text := "first paragraph\r\n\r\nsecond paragraph"

	s := NewSplitter()
	chunks := s.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, "first paragraph\nsecond paragraph", chunks[0])
}

func TestSplitterBlankLinesWithWhitespace(t *testing.T) {
	// Lines holding only spaces or tabs still count as blank separators.
	text := "alpha\n \t \nbeta\n\n\n\ngamma"

	s := NewSplitter()
	chunks := s.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha\nbeta\ngamma", chunks[0])
}

func TestSplitterLeadingAndTrailingBlankLines(t *testing.T) {
	s := NewSplitter()
	chunks := s.Split("\n\n\nhello\n\n\n")

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestSplitterCountsRunesNotBytes(t *testing.T) {
	// 400 multi-byte runes per paragraph: two fit under a 1000 rune limit
	// even though their byte length is far larger.
	para := strings.Repeat("ü", 400)
	text := para + "\n\n" + para

	s := NewSplitter()
	chunks := s.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, 801, utf8.RuneCountInString(chunks[0]))
}

func TestSplitterCustomChunkSize(t *testing.T) {
	s := NewSplitter(WithMaxChunkSize(10))
	require.Equal(t, 10, s.MaxChunkSize())

	chunks := s.Split("abcdef\n\nghijkl")
	require.Len(t, chunks, 2)

	// Non-positive sizes fall back to the default.
	s = NewSplitter(WithMaxChunkSize(0))
	assert.Equal(t, DefaultMaxChunkSize, s.MaxChunkSize())
}

func TestSplitterChunksAreTrimmed(t *testing.T) {
	s := NewSplitter()
	for _, chunk := range s.Split("  padded paragraph  \n\n\tanother one\t") {
		assert.Equal(t, strings.TrimSpace(chunk), chunk)
	}
}
