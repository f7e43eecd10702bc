package convert

import (
	"fmt"
	"strings"
)

// Format is a conversion target. The zero value means no format was selected.
type Format string

const (
	FormatNone Format = ""
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
	FormatWEBP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatGIF  Format = "gif"
	FormatICO  Format = "ico"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported target in display order.
var Formats = []Format{
	FormatPNG,
	FormatJPEG,
	FormatWEBP,
	FormatBMP,
	FormatTIFF,
	FormatGIF,
	FormatICO,
	FormatPDF,
}

// ParseFormat maps user input to a Format. Matching ignores case and a leading dot,
// and accepts "jpeg" and "tif" aliases.
func ParseFormat(s string) (Format, error) {
	v := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch v {
	case "jpeg":
		return FormatJPEG, nil
	case "tif":
		return FormatTIFF, nil
	}
	for _, f := range Formats {
		if string(f) == v {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("unsupported output format %q", s)
}

func (f Format) String() string {
	if f == FormatNone {
		return "none"
	}
	return string(f)
}

// Valid reports whether f is one of the supported targets.
func (f Format) Valid() bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Ext is the file extension written for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// SupportsAlpha reports whether the written file can carry transparency.
func (f Format) SupportsAlpha() bool {
	switch f {
	case FormatJPEG, FormatPDF:
		return false
	default:
		return f.Valid()
	}
}

// UsesQuality reports whether the encoder for f honours the quality setting.
func (f Format) UsesQuality() bool {
	return f == FormatJPEG || f == FormatWEBP
}
