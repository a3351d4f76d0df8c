package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"kbase/internal/domain/kbModel"
)

func extractPDF(name string, raw []byte) ([]Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open pdf %s: %v", kbModel.ErrExtraction, name, err)
	}

	var pages []Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// a single broken page should not sink the document
			continue
		}

		pages = append(pages, Page{
			Number:  i,
			Content: content,
		})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no readable pages in %s", kbModel.ErrExtraction, name)
	}
	return pages, nil
}

// extractDocxTxtRtf reads .odt, .docx, .rtf or plaintext content. The parser
// only works on files, so the bytes take a detour through a temp file.
// Page numbers are not tracked for these formats; everything lands on page 1.
func extractDocxTxtRtf(name string, raw []byte) ([]Page, error) {
	tmp, err := os.CreateTemp("", "extract-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("%w: temp file for %s: %v", kbModel.ErrExtraction, name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: writing %s: %v", kbModel.ErrExtraction, name, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: writing %s: %v", kbModel.ErrExtraction, name, err)
	}

	text, err := cat.File(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kbModel.ErrExtraction, name, err)
	}

	return []Page{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("page extraction timeout")
	}
}
