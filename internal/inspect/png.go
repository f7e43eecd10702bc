package inspect

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// scanPNG walks the chunks of a PNG stream collecting text, time and EXIF metadata.
func scanPNG(rs io.ReadSeeker, set detailSet) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return err
	}

	br := bufio.NewReader(rs)

	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return err
	}
	if !bytes.Equal(sig, pngSignature) {
		return errors.New("invalid PNG signature")
	}

	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		length := binary.BigEndian.Uint32(header[:4])
		chunk := string(header[4:])

		switch chunk {
		case "tEXt", "zTXt", "iTXt", "tIME", "eXIf":
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return err
			}
			if _, err := io.CopyN(io.Discard, br, 4); err != nil {
				return err
			}
			if err := addPNGChunk(set, chunk, data); err != nil {
				return err
			}
		default:
			if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
				return err
			}
		}

		if chunk == "IEND" {
			return nil
		}
	}
}

func addPNGChunk(set detailSet, chunk string, data []byte) error {
	switch chunk {
	case "tIME":
		if len(data) != 7 {
			return fmt.Errorf("invalid tIME chunk length %d", len(data))
		}
		year := binary.BigEndian.Uint16(data[:2])
		set.add(CategoryTimestamp, "tIME", fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, data[2], data[3], data[4], data[5], data[6]))
	case "eXIf":
		return scanExif(bytes.NewReader(data), set)
	default:
		key, value := pngText(chunk, data)
		if key != "" {
			set.add(pngTextCategory(key), key, value)
		}
	}
	return nil
}

// pngText splits a text chunk into its keyword and, when stored uncompressed, its text.
func pngText(chunk string, data []byte) (string, string) {
	idx := bytes.IndexByte(data, 0)
	if idx <= 0 {
		return "", ""
	}
	key, rest := string(data[:idx]), data[idx+1:]

	switch chunk {
	case "tEXt":
		return key, string(rest)
	case "iTXt":
		// compression flag, method, language tag, translated keyword, text.
		if len(rest) < 2 || rest[0] != 0 {
			return key, "(compressed)"
		}
		parts := bytes.SplitN(rest[2:], []byte{0}, 3)
		if len(parts) != 3 {
			return key, ""
		}
		return key, string(parts[2])
	default:
		return key, "(compressed)"
	}
}

func pngTextCategory(key string) string {
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "gps") || strings.Contains(lower, "latitude") || strings.Contains(lower, "longitude"):
		return CategoryGPS
	case strings.Contains(lower, "model") || strings.Contains(lower, "make"):
		return CategoryDevice
	case strings.Contains(lower, "date") || strings.Contains(lower, "time"):
		return CategoryTimestamp
	case strings.Contains(lower, "serial"):
		return CategoryIdentifier
	default:
		return CategoryText
	}
}
