package image

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// Default sampling limits.
const (
	DefaultMaxWidth   = 200
	DefaultMaxHeight  = 300
	DefaultSamplerCap = 20000
)

// SamplerConfig bounds the working set produced by a Sampler.
type SamplerConfig struct {
	// MaxWidth and MaxHeight bound the thumbnail the pixels are read from.
	MaxWidth  int
	MaxHeight int
	// Cap is the maximum number of pixels kept after subsampling.
	Cap int
}

// DefaultSamplerConfig returns the default sampler limits.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		Cap:       DefaultSamplerCap,
	}
}

// Validate validates the sampler configuration.
func (c SamplerConfig) Validate() error {
	if c.MaxWidth < 1 || c.MaxHeight < 1 {
		return fmt.Errorf("sampler footprint must be at least 1x1, got %dx%d", c.MaxWidth, c.MaxHeight)
	}
	if c.Cap < 1 {
		return fmt.Errorf("sampler cap must be at least 1, got %d", c.Cap)
	}
	return nil
}

// PixelSample is a bounded set of RGB triples in [0,1] drawn from one image.
type PixelSample []colorful.Color

// Sampler downsamples an image and draws a bounded random subset of its pixels.
type Sampler struct {
	cfg SamplerConfig
}

// NewSampler creates a Sampler with the given limits.
func NewSampler(cfg SamplerConfig) *Sampler {
	return &Sampler{cfg: cfg}
}

// Sample returns at most Cap pixels from img after shrinking it to fit the
// configured footprint. When the image holds more pixels than the cap, a
// uniform subset is drawn without replacement using rng. A nil rng uses an
// unseeded source, so results vary between calls.
func (s *Sampler) Sample(img image.Image, rng *rand.Rand) PixelSample {
	if img == nil {
		return nil
	}
	pixels := Pixels(Thumbnail(img, s.cfg.MaxWidth, s.cfg.MaxHeight))
	if len(pixels) <= s.cfg.Cap {
		return pixels
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 - sampling, not security
	}

	// Partial Fisher-Yates: the first Cap slots end up a uniform subset.
	for i := 0; i < s.cfg.Cap; i++ {
		j := i + rng.Intn(len(pixels)-i)
		pixels[i], pixels[j] = pixels[j], pixels[i]
	}
	return pixels[:s.cfg.Cap]
}

// Thumbnail shrinks img to fit within maxWidth x maxHeight, preserving the
// aspect ratio. Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth && h <= maxHeight {
		return img
	}

	scale := math.Min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	nw := max(int(math.Round(float64(w)*scale)), 1)
	nh := max(int(math.Round(float64(h)*scale)), 1)
	return Resize(img, nw, nh)
}

// Resize scales img to exactly width x height using Catmull-Rom resampling.
func Resize(img image.Image, width, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Pixels flattens img into RGB triples in [0,1], row by row.
// Alpha is discarded rather than composited.
func Pixels(img image.Image) PixelSample {
	bounds := img.Bounds()
	pixels := make(PixelSample, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixels = append(pixels, ToColorful(img.At(x, y)))
		}
	}
	return pixels
}

// ToColorful converts a color.Color to an un-premultiplied RGB triple in [0,1].
func ToColorful(c color.Color) colorful.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return colorful.Color{
		R: float64(n.R) / 255.0,
		G: float64(n.G) / 255.0,
		B: float64(n.B) / 255.0,
	}
}
