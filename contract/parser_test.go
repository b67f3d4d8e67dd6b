package contract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePDFRejectsOversizedFile(t *testing.T) {
	content := bytes.Repeat([]byte("a"), maxFileSize+1)
	_, err := ParsePDF(content)
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestParsePDFRejectsInvalidSignature(t *testing.T) {
	_, err := ParsePDF([]byte("not a pdf at all"))
	require.ErrorIs(t, err, ErrInvalidSignature)
}
