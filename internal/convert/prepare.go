package convert

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Prepare applies the color-mode rules of the target format to img.
//
// JPEG gets transparent sources composited over white and everything else flattened
// to opaque RGB. PDF drops alpha without compositing. Other targets keep img as is.
func Prepare(img image.Image, format Format) image.Image {
	switch format {
	case FormatJPEG:
		if HasTransparency(img) {
			return flattenOnWhite(img)
		}
		return toRGB(img)
	case FormatPDF:
		if HasAlphaChannel(img) || isPaletted(img) {
			return dropAlpha(img)
		}
		return img
	default:
		return img
	}
}

// HasAlphaChannel reports whether the color model of img carries alpha.
func HasAlphaChannel(img image.Image) bool {
	if _, ok := img.(*image.Paletted); ok {
		return false
	}
	switch img.ColorModel() {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model, color.NYCbCrAModel:
		return true
	}
	return false
}

// HasTransparency reports whether img has an alpha channel with at least one
// non-opaque pixel, or is paletted with a transparent palette entry.
func HasTransparency(img image.Image) bool {
	if p, ok := img.(*image.Paletted); ok {
		return paletteHasTransparency(p.Palette)
	}
	if !HasAlphaChannel(img) {
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

func isPaletted(img image.Image) bool {
	_, ok := img.(*image.Paletted)
	return ok
}

func paletteHasTransparency(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}

// flattenOnWhite composites img over an opaque white canvas of the same bounds.
func flattenOnWhite(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

func toRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// dropAlpha keeps the straight (non-premultiplied) color of every pixel and forces
// it opaque.
func dropAlpha(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 0xff
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}
