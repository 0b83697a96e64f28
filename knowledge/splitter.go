package knowledge

import "strings"

// Splitter chunk defaults mirror the corpus build settings: 500-character
// chunks with 50 characters of overlap.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// defaultSeparators is the hierarchical separator preference: paragraph
// break, line break, space, then single characters as a last resort.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts document text into overlapping chunks, preferring to break at
// the coarsest separator that keeps chunks under the size limit.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter constructs a Splitter with the given chunk size and overlap.
// Non-positive values fall back to the defaults.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap, separators: defaultSeparators}
}

// Split returns the text as ordered chunks of at most chunkSize characters,
// adjacent chunks sharing roughly overlap characters.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	pieces := s.split(text, s.separators)
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// split recursively divides text at the first separator present, re-splitting
// any fragment still over the limit with the finer separators, then merges
// fragments back into overlapping chunks.
func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep := separators[len(separators)-1]
	rest := []string{}
	for i, cand := range separators {
		if cand == "" || strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	var fragments []string
	if sep == "" {
		for start := 0; start < len(text); start += s.chunkSize - s.overlap {
			end := start + s.chunkSize
			if end > len(text) {
				end = len(text)
			}
			fragments = append(fragments, text[start:end])
			if end == len(text) {
				break
			}
		}
		return fragments
	}

	for _, part := range strings.Split(text, sep) {
		if len(part) > s.chunkSize && len(rest) > 0 {
			fragments = append(fragments, s.split(part, rest)...)
		} else {
			fragments = append(fragments, part)
		}
	}
	return s.merge(fragments, sep)
}

// merge packs fragments into chunks up to chunkSize, carrying a tail of the
// previous chunk forward as overlap.
func (s *Splitter) merge(fragments []string, sep string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()
		if s.overlap > 0 && len(chunk) > s.overlap {
			current.WriteString(chunk[len(chunk)-s.overlap:])
		}
	}

	for _, frag := range fragments {
		extra := len(frag)
		if current.Len() > 0 {
			extra += len(sep)
		}
		if current.Len()+extra > s.chunkSize {
			flush()
			// the carried overlap counts against the bound too; drop it when
			// the next fragment would not fit alongside it
			if current.Len() > 0 && current.Len()+len(sep)+len(frag) > s.chunkSize {
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(frag)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
