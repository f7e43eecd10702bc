package convert

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"time"

	"github.com/chai2010/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// encodeWithQuality handles the lossy targets, the only ones that receive quality.
func encodeWithQuality(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatWEBP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	default:
		return fmt.Errorf("format %s does not take a quality setting", format)
	}
}

// encodeLossless handles every target that ignores quality. created pins the
// document date of formats that embed one.
func encodeLossless(w io.Writer, img image.Image, format Format, created time.Time) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatGIF:
		return encodeGIF(w, img)
	case FormatICO:
		return encodeICO(w, img)
	case FormatPDF:
		return encodePDF(w, img, created)
	default:
		return fmt.Errorf("format %s has no lossless encoder", format)
	}
}

// encodeGIF keeps the palette of paletted sources, transparency included, and
// quantizes everything else.
func encodeGIF(w io.Writer, img image.Image) error {
	if p, ok := img.(*image.Paletted); ok {
		return gif.Encode(w, p, nil)
	}
	return gif.Encode(w, img, &gif.Options{NumColors: 256, Drawer: draw.FloydSteinberg})
}
