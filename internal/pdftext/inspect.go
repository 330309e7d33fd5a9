package pdftext

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Inspection is the structural preflight of a PDF.
type Inspection struct {
	PageCount int
	Encrypted bool
}

var disableConfigDir sync.Once

// Inspect parses the cross-reference structure with pdfcpu in relaxed mode.
// Documents pdfcpu cannot open at all are reported as ErrInvalidPDF, or
// ErrEncrypted when a password is required.
func Inspect(data []byte) (info *Inspection, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("%w: panic while parsing: %v", ErrInvalidPDF, r)
		}
	}()

	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "password") {
			return nil, fmt.Errorf("%w: %v", ErrEncrypted, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: page tree: %v", ErrInvalidPDF, err)
	}

	return &Inspection{
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}, nil
}
