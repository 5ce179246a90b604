// Package seed derives the random seed used when subsampling poster pixels.
// Random mode keeps sampling non-deterministic; the other modes make a run
// reproducible.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"slices"
	"time"
)

// Mode determines how the sampling seed is generated.
type Mode string

const (
	// ModeRandom uses a non-deterministic seed (varies each run). Default.
	ModeRandom Mode = "random"
	// ModeManual uses a user-provided seed value for every image.
	ModeManual Mode = "manual"
	// ModeContent derives the seed from a hash of the image content.
	ModeContent Mode = "content"
	// ModeFilepath derives the seed from a hash of the absolute file path.
	ModeFilepath Mode = "filepath"
)

// Config holds configuration for seed generation.
type Config struct {
	Mode  Mode   // Seed mode
	Value *int64 // Seed value (only used when Mode is ModeManual)
}

// Reproducible reports whether the mode yields the same seed for the same input.
func (c Config) Reproducible() bool {
	return c.Mode != ModeRandom && c.Mode != ""
}

// Key returns a stable string identifying the seed configuration, suitable
// for keying cached results. Random mode has no stable key.
func (c Config) Key() string {
	switch c.Mode {
	case ModeManual:
		if c.Value != nil {
			return fmt.Sprintf("manual:%d", *c.Value)
		}
		return "manual"
	case "":
		return string(ModeRandom)
	default:
		return string(c.Mode)
	}
}

// Calculate determines the seed value based on the seed mode.
// img is required for ModeContent, imagePath for ModeFilepath.
func Calculate(img image.Image, imagePath string, config Config) (int64, error) {
	switch config.Mode {
	case ModeRandom, "":
		return GenerateRandomSeed(), nil
	case ModeManual:
		if config.Value == nil {
			return 0, fmt.Errorf("seed value is required for manual seed mode")
		}
		return *config.Value, nil
	case ModeContent:
		if img == nil {
			return 0, fmt.Errorf("image is required for content-based seed mode")
		}
		return CalculateContentSeed(img)
	case ModeFilepath:
		if imagePath == "" {
			return 0, fmt.Errorf("image path is required for filepath-based seed mode")
		}
		return CalculateFilepathSeed(imagePath)
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// NewRand returns a math/rand source seeded per the configuration.
func NewRand(img image.Image, imagePath string, config Config) (*rand.Rand, error) {
	s, err := Calculate(img, imagePath, config)
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(s)), nil // #nosec G404 - sampling, not security
}

// CalculateContentSeed generates a deterministic seed from image content,
// independent of filename or location.
func CalculateContentSeed(img image.Image) (int64, error) {
	if img == nil {
		return 0, fmt.Errorf("image cannot be nil")
	}

	bounds := img.Bounds()
	hasher := sha256.New()

	dimBytes := make([]byte, 8)
	binary.LittleEndian.PutUint32(dimBytes[0:4], uint32(bounds.Dx())) // #nosec G115 -- image dimensions are safe to convert
	binary.LittleEndian.PutUint32(dimBytes[4:8], uint32(bounds.Dy())) // #nosec G115 -- image dimensions are safe to convert
	hasher.Write(dimBytes)

	// A coarse grid is enough to identify a poster.
	step := max(bounds.Dx()/100, bounds.Dy()/100, 1)
	pixelBytes := make([]byte, 4)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			pixelBytes[0] = byte(r >> 8)
			pixelBytes[1] = byte(g >> 8)
			pixelBytes[2] = byte(b >> 8)
			pixelBytes[3] = byte(a >> 8)
			hasher.Write(pixelBytes)
		}
	}

	hash := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(hash[:8])), nil // #nosec G115 -- hash conversion is safe
}

// CalculateFilepathSeed generates a deterministic seed from the absolute file path.
func CalculateFilepathSeed(imagePath string) (int64, error) {
	if imagePath == "" {
		return 0, fmt.Errorf("image path cannot be empty")
	}

	absPath, err := filepath.Abs(imagePath)
	if err != nil {
		absPath = imagePath
	}

	hash := sha256.Sum256([]byte(absPath))
	return int64(binary.LittleEndian.Uint64(hash[:8])), nil // #nosec G115 -- hash conversion is safe
}

// GenerateRandomSeed generates a non-deterministic random seed.
func GenerateRandomSeed() int64 {
	// #nosec G404 -- Random seed generation is intentionally non-deterministic
	return time.Now().UnixNano() + int64(rand.Intn(1000000))
}

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeRandom, ModeManual, ModeContent, ModeFilepath}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: random, manual, content, filepath)", s)
}
