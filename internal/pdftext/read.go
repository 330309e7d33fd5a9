package pdftext

import (
	"bytes"
	"fmt"
	"io"
)

var pdfHeader = []byte("%PDF")

// readPDF reads the whole document, enforcing maxSize and the %PDF header.
func readPDF(pdfData io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}

	// One byte over the limit is enough to know it is too large.
	data, err := io.ReadAll(io.LimitReader(pdfData, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF data: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, maxSize)
	}
	if !bytes.HasPrefix(data, pdfHeader) {
		return nil, fmt.Errorf("%w: missing PDF header", ErrInvalidPDF)
	}
	return data, nil
}
