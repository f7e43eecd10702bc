package convert

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// PDFResolution is the DPI written into exported PDFs.
const PDFResolution = 100.0

const pdfImageName = "page"

// PDFPageSize returns the page size in points for an image of the given pixel size.
func PDFPageSize(width, height int) (float64, float64) {
	return float64(width) * 72 / PDFResolution, float64(height) * 72 / PDFResolution
}

// encodePDF writes img as a single page PDF sized at PDFResolution. Callers drop
// alpha first; the page image is embedded as a flate-compressed PNG.
func encodePDF(w io.Writer, img image.Image, created time.Time) error {
	b := img.Bounds()
	wPt, hPt := PDFPageSize(b.Dx(), b.Dy())

	// fpdf only reads 8-bit PNGs.
	switch img.(type) {
	case *image.Gray, *image.NRGBA, *image.RGBA:
	default:
		img = toRGB(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: wPt, Ht: hPt},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(pdfImageName, opts, &buf)
	pdf.ImageOptions(pdfImageName, 0, 0, wPt, hPt, false, opts, 0, "")

	return pdf.Output(w)
}
