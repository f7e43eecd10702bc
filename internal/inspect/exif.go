package inspect

import (
	"bytes"
	"errors"
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// Metadata categories, in report order.
const (
	CategoryGPS        = "GPS"
	CategoryDevice     = "Device Model"
	CategoryTimestamp  = "Timestamp"
	CategoryIdentifier = "Identifiers"
	CategoryText       = "Text"
)

var categoryOrder = []string{CategoryGPS, CategoryDevice, CategoryTimestamp, CategoryIdentifier, CategoryText}

type detailSet map[string][]string

func (s detailSet) add(category, key, value string) {
	s[category] = append(s[category], key+"="+strings.TrimSpace(value))
}

func (s detailSet) details() []Detail {
	var out []Detail
	for _, category := range categoryOrder {
		if values := s[category]; len(values) > 0 {
			out = append(out, Detail{Category: category, Values: values})
		}
	}
	return out
}

func scanExif(rs io.ReadSeeker, set detailSet) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return err
	}

	raw, err := exif.SearchAndExtractExifWithReader(rs)
	if err != nil {
		if isNoExif(err) {
			return nil
		}
		return err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(raw), nil, true)
	if err != nil {
		return err
	}

	for _, tag := range tags {
		if category := exifCategory(tag.TagName, tag.IfdPath); category != "" {
			set.add(category, tag.TagName, tag.Formatted)
		}
	}
	return nil
}

func exifCategory(name, ifdPath string) string {
	switch {
	case strings.HasPrefix(name, "GPS") || strings.Contains(ifdPath, "GPS"):
		return CategoryGPS
	case name == "Make" || name == "Model" || name == "CameraModelName" || name == "LensMake" || name == "LensModel":
		return CategoryDevice
	case name == "DateTimeOriginal" || name == "DateTimeDigitized" || name == "DateTime":
		return CategoryTimestamp
	case strings.Contains(strings.ToLower(name), "serial") || name == "ImageUniqueID":
		return CategoryIdentifier
	default:
		return ""
	}
}

func isNoExif(err error) bool {
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
