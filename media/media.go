// Package media handles avatar image uploads and thumbnail generation.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/webp"
)

// Config holds avatar processing configuration.
type Config struct {
	UploadPath    string
	MaxUploadSize int64
	AvatarSize    int // Square output dimension in pixels
	Quality       int // JPEG quality
}

// Processor handles avatar file processing.
type Processor struct {
	config Config
}

// NewProcessor creates a new media processor.
func NewProcessor(cfg Config) *Processor {
	if cfg.AvatarSize == 0 {
		cfg.AvatarSize = 256
	}
	if cfg.Quality == 0 {
		cfg.Quality = 85
	}
	return &Processor{config: cfg}
}

// MaxUploadSize returns the configured upload limit in bytes.
func (p *Processor) MaxUploadSize() int64 {
	return p.config.MaxUploadSize
}

// IsImage checks if a mime type is a supported avatar image.
func IsImage(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return strings.HasPrefix(mimeType, "image/")
}

// SaveAvatar decodes an uploaded image, center-crops it to a square,
// scales it to the configured avatar size and stores it as JPEG.
// Returns the storage path.
func (p *Processor) SaveAvatar(userID uuid.UUID, r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	avatar := p.squareThumbnail(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, avatar, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return "", fmt.Errorf("failed to encode avatar: %w", err)
	}

	idStr := userID.String()
	dir := filepath.Join(p.config.UploadPath, "avatars", idStr[:2])
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, idStr+".jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	return path, nil
}

// AvatarPath returns the storage path for a user's avatar.
func (p *Processor) AvatarPath(userID uuid.UUID) string {
	idStr := userID.String()
	return filepath.Join(p.config.UploadPath, "avatars", idStr[:2], idStr+".jpg")
}

// DeleteAvatar removes a user's avatar from disk.
func (p *Processor) DeleteAvatar(userID uuid.UUID) error {
	return os.Remove(p.AvatarPath(userID))
}

// squareThumbnail center-crops the source to a square and scales it down.
// Images already smaller than the target are not upscaled.
func (p *Processor) squareThumbnail(src image.Image) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	side := w
	if h < side {
		side = h
	}
	x0 := bounds.Min.X + (w-side)/2
	y0 := bounds.Min.Y + (h-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	out := side
	if out > p.config.AvatarSize {
		out = p.config.AvatarSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, out, out))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}
