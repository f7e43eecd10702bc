package inspect

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"

	"recast/internal/convert"
	"recast/internal/log"
	"recast/pkg/imgutil"
)

// Detail groups metadata entries ("Key=Value") under a category.
type Detail struct {
	Category string
	Values   []string
}

// Insight is a human readable observation derived from the details.
type Insight struct {
	Kind    string
	Message string
}

// Report describes one input file.
type Report struct {
	Path       string
	Size       int64
	Kind       imgutil.Kind
	Decoder    string
	Width      int
	Height     int
	ColorModel string
	Alpha      bool
	Details    []Detail
	Insights   []Insight
	// Err is the first failure. Whatever was gathered before it is kept.
	Err error
}

// Config is the configuration for the Inspector.
type Config struct {
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "inspect.Inspector"})
	return nil
}

// Inspector builds file reports. It never writes.
type Inspector struct {
	logger log.Logger
}

// NewInspector creates a new Inspector.
func NewInspector(cfg Config) (*Inspector, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Inspector{logger: cfg.Logger}, nil
}

// Inspect reports on path.
func (i *Inspector) Inspect(ctx context.Context, path string) Report {
	rep := Report{Path: path}

	if err := ctx.Err(); err != nil {
		rep.Err = err
		return rep
	}

	file, err := os.Open(path)
	if err != nil {
		rep.Err = err
		return rep
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil {
		rep.Size = info.Size()
	}

	kind, err := imgutil.SniffReader(file)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Kind = kind

	cfg, decoder, err := convert.Probe(path)
	if err != nil {
		rep.Err = err
	} else {
		rep.Decoder = decoder
		rep.Width, rep.Height = cfg.Width, cfg.Height
		rep.ColorModel = modelName(cfg.ColorModel)
		rep.Alpha = modelHasAlpha(cfg.ColorModel)
	}

	details, err := scanMetadata(file, kind)
	if err != nil {
		i.logger.Debugf("could not read metadata of %s: %v", path, err)
		if rep.Err == nil {
			rep.Err = fmt.Errorf("reading metadata: %w", err)
		}
	}
	rep.Details = details
	rep.Insights = buildInsights(details)

	return rep
}

func scanMetadata(rs io.ReadSeeker, kind imgutil.Kind) ([]Detail, error) {
	set := detailSet{}
	var err error
	switch kind {
	case imgutil.KindJPEG, imgutil.KindTIFF:
		err = scanExif(rs, set)
	case imgutil.KindPNG:
		err = scanPNG(rs, set)
	}
	return set.details(), err
}

func modelName(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "Paletted"
	}
	switch m {
	case color.RGBAModel:
		return "RGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.AlphaModel:
		return "Alpha"
	case color.Alpha16Model:
		return "Alpha16"
	case color.GrayModel:
		return "Gray"
	case color.Gray16Model:
		return "Gray16"
	case color.YCbCrModel:
		return "YCbCr"
	case color.NYCbCrAModel:
		return "NYCbCrA"
	case color.CMYKModel:
		return "CMYK"
	default:
		return "unknown"
	}
}

func modelHasAlpha(m color.Model) bool {
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model, color.NYCbCrAModel:
		return true
	default:
		return false
	}
}
