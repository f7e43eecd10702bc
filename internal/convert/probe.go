package convert

import (
	"bufio"
	"image"
	"os"
)

// Probe decodes the header of path without decoding its pixels. It returns the image
// config and the registered decoder name. Failures are classified like Convert's.
func Probe(path string) (image.Config, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", newError(KindIOFailure, path, err)
	}
	defer file.Close()

	cfg, name, err := image.DecodeConfig(bufio.NewReader(file))
	if err != nil {
		return image.Config{}, "", newError(KindUnreadable, path, err)
	}
	return cfg, name, nil
}
