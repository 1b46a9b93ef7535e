package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/domain"
)

const pageSeparator = "\n"

// pageSource exposes a document as 1-indexed pages.
type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
	Close() error
}

type pdfPageSource struct {
	file   *os.File
	reader *pdf.Reader
}

func openPDFPages(path string) (pageSource, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	return &pdfPageSource{file: file, reader: reader}, nil
}

func (p *pdfPageSource) NumPage() int {
	return p.reader.NumPage()
}

func (p *pdfPageSource) PageText(num int) (string, error) {
	page := p.reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (p *pdfPageSource) Close() error {
	return p.file.Close()
}

type documentTextExtractor struct {
	logger    outbound.LoggerPort
	openPages func(path string) (pageSource, error)
	readFile  func(name string) ([]byte, error)
}

func NewDocumentTextExtractor(logger outbound.LoggerPort) outbound.TextExtractorPort {
	return &documentTextExtractor{
		logger:    logger,
		openPages: openPDFPages,
		readFile:  os.ReadFile,
	}
}

func (e *documentTextExtractor) Extract(ctx context.Context, documentPath string) (string, error) {
	if strings.TrimSpace(documentPath) == "" {
		return "", domain.NewEngineError(domain.ErrExtractionFailed, "document path is required", nil)
	}

	switch strings.ToLower(filepath.Ext(documentPath)) {
	case ".pdf":
		return e.extractPages(ctx, documentPath)
	case ".txt", ".md":
		content, err := e.readFile(documentPath)
		if err != nil {
			e.logger.ErrorWithFields(err, "Failed to read text document", map[string]interface{}{
				"path": documentPath,
			})
			return "", domain.NewEngineError(domain.ErrExtractionFailed, "cannot read document", err)
		}
		return string(content), nil
	default:
		return "", domain.NewEngineError(domain.ErrExtractionFailed,
			fmt.Sprintf("unsupported document type %q", filepath.Ext(documentPath)), nil)
	}
}

// extractPages joins page texts in document order. A page that yields no
// text, or fails to decode, contributes an empty string.
func (e *documentTextExtractor) extractPages(ctx context.Context, documentPath string) (text string, err error) {
	defer func() {
		// Opening or counting pages can panic on malformed inputs.
		if r := recover(); r != nil {
			e.logger.ErrorWithFields(fmt.Errorf("%v", r), "PDF parser panicked", map[string]interface{}{
				"path": documentPath,
			})
			text = ""
			err = domain.NewEngineError(domain.ErrExtractionFailed, "document cannot be parsed", fmt.Errorf("%v", r))
		}
	}()

	pages, err := e.openPages(documentPath)
	if err != nil {
		e.logger.ErrorWithFields(err, "Failed to open document", map[string]interface{}{
			"path": documentPath,
		})
		return "", domain.NewEngineError(domain.ErrExtractionFailed, "cannot open document", err)
	}
	defer func() {
		if closeErr := pages.Close(); closeErr != nil {
			e.logger.Error(closeErr, "Failed to close document")
		}
	}()

	texts := make([]string, 0, pages.NumPage())
	for num := 1; num <= pages.NumPage(); num++ {
		if err := ctx.Err(); err != nil {
			return "", domain.NewEngineError(domain.ErrExtractionFailed, "extraction interrupted", err)
		}
		pageText, err := readPage(pages, num)
		if err != nil {
			e.logger.WarnWithFields("Page yielded no extractable text", map[string]interface{}{
				"path":  documentPath,
				"page":  num,
				"error": err.Error(),
			})
			pageText = ""
		}
		texts = append(texts, pageText)
	}

	return strings.Join(texts, pageSeparator), nil
}

// readPage turns a parser panic on one page into that page's error.
func readPage(pages pageSource, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page %d cannot be decoded: %v", num, r)
		}
	}()
	return pages.PageText(num)
}
