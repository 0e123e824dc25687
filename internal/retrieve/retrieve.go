// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve selects the reference-corpus fragments most relevant to a
// generation prompt. Relevance is keyword term frequency over fixed-width
// chunks; the result is raw corpus text with no added markup.
package retrieve

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Defaults used by Retrieve.
const (
	DefaultChunkWidth = 4000
	DefaultMinCorpus  = 100
	DefaultTopK       = 3
	DefaultSeparator  = "\n...\n"

	// minKeywordLen is the longest token still treated as noise.
	minKeywordLen = 4
)

// Options parameterises retrieval.
type Options struct {
	// ChunkWidth is the chunk size in characters.
	ChunkWidth int
	// MinCorpus is the shortest corpus considered usable.
	MinCorpus int
	// TopK is the number of chunks returned.
	TopK int
	// Separator is placed between returned chunks.
	Separator string
}

// DefaultOptions returns the standard retrieval settings.
func DefaultOptions() Options {
	return Options{
		ChunkWidth: DefaultChunkWidth,
		MinCorpus:  DefaultMinCorpus,
		TopK:       DefaultTopK,
		Separator:  DefaultSeparator,
	}
}

// Retrieve returns the topK chunks of corpus that best match query. A topK of
// zero or less uses DefaultTopK.
func Retrieve(query, corpus string, topK int) string {
	opts := DefaultOptions()
	if topK > 0 {
		opts.TopK = topK
	}
	return RetrieveWith(opts, query, corpus)
}

// RetrieveWith is Retrieve with explicit options. Zero-valued fields fall
// back to the defaults, except MinCorpus where zero means no minimum.
func RetrieveWith(opts Options, query, corpus string) string {
	if opts.ChunkWidth <= 0 {
		opts.ChunkWidth = DefaultChunkWidth
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}

	if corpus == "" || utf8.RuneCountInString(corpus) < opts.MinCorpus {
		return ""
	}

	chunks := Chunk(corpus, opts.ChunkWidth)
	keywords := Keywords(query)
	if len(keywords) == 0 {
		return chunks[0]
	}

	type scored struct {
		text  string
		score int
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = scored{text: c, score: Score(c, keywords)}
	}

	// Chunk order carries document locality, so ties must keep it.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := opts.TopK
	if n > len(ranked) {
		n = len(ranked)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = ranked[i].text
	}
	return strings.Join(parts, opts.Separator)
}

// Chunk slices text into contiguous pieces of width characters. The last
// piece may be shorter. Boundaries never split a multi-byte character.
func Chunk(text string, width int) []string {
	if width <= 0 {
		width = DefaultChunkWidth
	}
	var chunks []string
	start, count := 0, 0
	for i := range text {
		if count == width {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks
}

// Keywords splits query on whitespace and keeps tokens longer than four
// characters, lowercased.
func Keywords(query string) []string {
	var kws []string
	for _, tok := range strings.Fields(query) {
		if utf8.RuneCountInString(tok) <= minKeywordLen {
			continue
		}
		kws = append(kws, strings.ToLower(tok))
	}
	return kws
}

// Score sums the case-insensitive occurrence counts of keywords in chunk.
// Keywords must already be lowercase.
func Score(chunk string, keywords []string) int {
	lower := strings.ToLower(chunk)
	total := 0
	for _, kw := range keywords {
		total += strings.Count(lower, kw)
	}
	return total
}
