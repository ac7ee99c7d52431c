package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source supplies the one decoded still image a clip is built from.
type Source interface {
	Dimensions() (width, height float64, err error)
	Render() (image.Image, error)
	Close() error
}

// Open picks a source implementation by file extension.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

// FitzPDFSource renders the first page of a PDF as the still image, for
// catalogs and flyers that exist only as print material.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  float64
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, fmt.Errorf("pdf %s has no pages", path)
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: 300}, nil
}

func (f *FitzPDFSource) Dimensions() (float64, float64, error) {
	rect, err := f.doc.Bound(0)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) Render() (image.Image, error) {
	return f.doc.ImageDPI(0, f.dpi)
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
