package convert

import (
	"image"
	"io"

	ico "github.com/sergeymakinen/go-ico"
	"golang.org/x/image/draw"
)

// MaxIconSize is the largest edge an ICO entry can describe.
const MaxIconSize = 256

// encodeICO writes a single-entry icon. Sources larger than MaxIconSize are scaled
// down to fit, keeping their aspect ratio. Decoding of PNG and BMP entries is
// registered by the ico package.
func encodeICO(w io.Writer, img image.Image) error {
	return ico.Encode(w, iconImage(img))
}

// iconImage fits img into an icon entry and keeps its alpha channel.
func iconImage(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxIconSize && h <= MaxIconSize {
		switch img.(type) {
		case *image.NRGBA, *image.RGBA, *image.Paletted, *image.Gray:
			return img
		}
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	var nw, nh int
	if w >= h {
		nw = MaxIconSize
		nh = max(1, h*MaxIconSize/w)
	} else {
		nh = MaxIconSize
		nw = max(1, w*MaxIconSize/h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
