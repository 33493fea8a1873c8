package model

import (
	"image"
	"image/color"
	"image/draw"
)

// StadiumImage is a decoded stadium diagram. The field extent maps onto its
// full bounds. It is read-only once constructed.
type StadiumImage struct {
	Name string
	URL  string
	img  *image.NRGBA
}

// NewStadiumImage converts src to NRGBA and wraps it.
func NewStadiumImage(name, url string, src image.Image) *StadiumImage {
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		b := src.Bounds()
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Rect, src, b.Min, draw.Src)
	}
	return &StadiumImage{Name: name, URL: url, img: nrgba}
}

// Width in pixels.
func (s *StadiumImage) Width() int { return s.img.Rect.Dx() }

// Height in pixels.
func (s *StadiumImage) Height() int { return s.img.Rect.Dy() }

// At returns the pixel at (x, y). Callers must check bounds.
func (s *StadiumImage) At(x, y int) color.NRGBA {
	return s.img.NRGBAAt(x, y)
}

// Image exposes the underlying raster for compositing. It must not be mutated.
func (s *StadiumImage) Image() *image.NRGBA { return s.img }
