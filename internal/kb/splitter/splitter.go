// Package splitter cuts extracted text into retrievable chunks. It walks a
// priority-ordered separator list (paragraph, line, sentence, clause, word,
// character) so a chunk breaks on the largest semantic unit that still fits
// the size limit, and repeats up to ChunkOverlap trailing characters of one
// chunk at the start of the next.
package splitter

import "strings"

type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// DefaultSeparators, best to worst. The empty string is the character-level
// fallback and must stay last.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " ", ""}

func Split(text string, cfg Config) []string {
	if text == "" {
		return nil
	}
	seps := cfg.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	return split(text, seps, cfg)
}

func split(text string, seps []string, cfg Config) []string {
	if len(text) <= cfg.ChunkSize {
		return []string{text}
	}

	sep, rest, found := pickSeparator(text, seps)
	if !found {
		return hardCut(text, cfg.ChunkSize, cfg.ChunkOverlap)
	}

	// parts that are still oversized fall through to the next separator
	var units []string
	for _, part := range strings.Split(text, sep) {
		if len(part) > cfg.ChunkSize {
			units = append(units, split(part, rest, cfg)...)
		} else {
			units = append(units, part)
		}
	}
	return merge(units, sep, cfg)
}

func pickSeparator(text string, seps []string) (sep string, rest []string, found bool) {
	for i, s := range seps {
		if s == "" {
			return "", nil, false
		}
		if strings.Contains(text, s) {
			return s, seps[i+1:], true
		}
	}
	return "", nil, false
}

// merge greedily packs units into chunks up to ChunkSize, seeding each new
// chunk with the overlap tail of the previous one.
func merge(units []string, sep string, cfg Config) []string {
	var chunks []string
	var current strings.Builder

	for _, unit := range units {
		if unit == "" {
			continue
		}

		candidate := current.Len() + len(unit)
		if current.Len() > 0 {
			candidate += len(sep)
		}
		if current.Len() > 0 && candidate > cfg.ChunkSize {
			chunk := current.String()
			chunks = append(chunks, chunk)

			current.Reset()
			current.WriteString(overlapTail(chunk, cfg.ChunkOverlap))
		}

		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(unit)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func overlapTail(chunk string, overlap int) string {
	if overlap <= 0 || len(chunk) <= overlap {
		if overlap <= 0 {
			return ""
		}
		return chunk
	}
	return chunk[len(chunk)-overlap:]
}

// hardCut is the character-level fallback for text with no separators at
// all: fixed windows stepping by ChunkSize-ChunkOverlap.
func hardCut(text string, size, overlap int) []string {
	step := size - overlap
	if step <= 0 {
		step = size
	}

	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
