// Package extract turns raw uploaded bytes into ordered pages of text. PDF
// and office formats are external concerns handled by dedicated parsers;
// everything downstream only ever sees pages.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"kbase/internal/domain/kbModel"
)

type Page struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// SubDocument is one ingestion unit after the page-limit split.
type SubDocument struct {
	Name string
	Text string
}

type Extractor interface {
	ExtractPages(name string, raw []byte) ([]Page, error)
}

type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) ExtractPages(name string, raw []byte) ([]Page, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", kbModel.ErrExtraction, name)
	}

	switch DocTypeOf(name) {
	case kbModel.PDF:
		return extractPDF(name, raw)
	case kbModel.DOCX:
		return extractDocxTxtRtf(name, raw)
	default:
		return nil, fmt.Errorf("%w: unsupported content type for %s", kbModel.ErrExtraction, name)
	}
}

func DocTypeOf(name string) kbModel.DocType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return kbModel.PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return kbModel.DOCX
	default:
		return kbModel.ERR
	}
}

// SplitOversized partitions pages into sub-documents of at most maxPages
// each. A document within the limit keeps its own name; anything larger
// becomes name-part1, name-part2, ... so each part is ingested - and later
// deletable - as an independent document.
func SplitOversized(name string, pages []Page, maxPages int) []SubDocument {
	if maxPages <= 0 || len(pages) <= maxPages {
		return []SubDocument{{Name: name, Text: joinPages(pages)}}
	}

	var subDocs []SubDocument
	for start := 0; start < len(pages); start += maxPages {
		end := start + maxPages
		if end > len(pages) {
			end = len(pages)
		}
		subDocs = append(subDocs, SubDocument{
			Name: fmt.Sprintf("%s-part%d", name, len(subDocs)+1),
			Text: joinPages(pages[start:end]),
		})
	}
	return subDocs
}

func joinPages(pages []Page) string {
	contents := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Content != "" {
			contents = append(contents, p.Content)
		}
	}
	return strings.Join(contents, "\n\n")
}
