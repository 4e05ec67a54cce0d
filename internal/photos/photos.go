// Package photos materializes listing photos on disk: content-addressed
// hashing plus a bounded-width JPEG re-encode of every source image.
package photos

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // legacy uploads include the odd gif and png
	"image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/ewen-lbh/loca7/internal/entities"
)

// Checksum returns the hex SHA-256 of the file at path, or nil when the
// file cannot be read. Missing source files are expected in the legacy
// uploads and must not abort anything.
func Checksum(path string) *string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil
	}
	sum := hex.EncodeToString(h.Sum(nil))
	return &sum
}

// ContentType guesses a MIME type from the file extension, defaulting
// to JPEG since that is what the legacy site stored almost exclusively.
func ContentType(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "image/jpeg"
}

// Processor writes display-ready copies of source photos.
type Processor struct {
	// Dir is where materialized files land, one <photo-id>.jpeg each.
	Dir string
	// MaxWidth caps the output width; narrower images are never upscaled.
	MaxWidth int
	// Quality is the JPEG encoder quality (1-100).
	Quality int
}

// Materialize decodes the source image, scales it down to at most
// MaxWidth (preserving aspect ratio, never upscaling), and writes the
// result as <photo.ID>.jpeg under Dir.
func (p Processor) Materialize(photo entities.Photo, sourcePath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open photo source %s: %w", sourcePath, err)
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("failed to decode photo %s: %w", sourcePath, err)
	}

	img = p.scale(img)

	outPath := filepath.Join(p.Dir, photo.ID+".jpeg")
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create photo file %s: %w", outPath, err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return fmt.Errorf("failed to encode photo %s: %w", outPath, err)
	}
	return nil
}

func (p Processor) scale(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= p.MaxWidth {
		return img
	}

	height := bounds.Dy() * p.MaxWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, p.MaxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
