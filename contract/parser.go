package contract

import (
	"bytes"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/nexuscore/negotiator/errors"
)

const maxFileSize = 10 * 1024 * 1024

var pdfSignature = []byte("%PDF")

var (
	ErrFileTooLarge     = errors.New("contract: file exceeds size limit")
	ErrInvalidSignature = errors.New("contract: file is not a valid PDF")
)

// ParsePDF extracts the text of a contract document. The size and
// signature checks run before the document is handed to the renderer.
func ParsePDF(content []byte) (string, error) {
	if len(content) > maxFileSize {
		return "", errors.WithStack(ErrFileTooLarge)
	}
	if !bytes.HasPrefix(content, pdfSignature) {
		return "", errors.WithStack(ErrInvalidSignature)
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open pdf")
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", errors.Wrapf(err, "failed to extract text from page %d", i)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n"), nil
}
