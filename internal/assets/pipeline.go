// ===== internal/assets/pipeline.go =====
package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/nfnt/resize"

	"welcome/internal/config"
)

// Pipeline fetches, caches and transforms avatar images. Every step is
// best-effort: a failure at any stage degrades to the previous stage's
// bytes, or to nil so the caller falls back to icon rendering.
type Pipeline struct {
	cacheDir    string
	toolTimeout time.Duration
	http        *http.Client

	// Resolved tool paths, probed once at startup; "" means unavailable
	sips   string
	magick string
}

// NewPipeline creates an asset pipeline, probing the external image
// tools once for the lifetime of the run
func NewPipeline(cfg *config.Config) *Pipeline {
	p := &Pipeline{
		cacheDir:    cfg.CacheDir,
		toolTimeout: cfg.ToolTimeout,
		http:        &http.Client{Timeout: cfg.HTTPTimeout},
	}

	if path, err := exec.LookPath(cfg.Sips); err == nil {
		p.sips = path
	}
	if path, err := exec.LookPath(cfg.Magick); err == nil {
		p.magick = path
	}

	return p
}

// Image resolves an avatar image: cached or fetched raw bytes, resized to
// 2x the target size for retina rendering, and circle-masked when the
// image is a personal avatar. Returns nil when no usable image could be
// produced, never an error.
func (p *Pipeline) Image(ctx context.Context, url string, size int, circular bool) []byte {
	if url == "" {
		return nil
	}

	data := p.fetch(ctx, url)
	if data == nil {
		return nil
	}

	data = p.resizeImage(ctx, data, size)
	if circular {
		data = p.circleImage(ctx, data)
	}

	return data
}

// cachePath content-addresses a URL inside the cache directory
func (p *Pipeline) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(p.cacheDir, hex.EncodeToString(sum[:]))
}

// fetch returns the raw bytes for a URL, from the disk cache when
// possible. Cache entries never expire. Fetch errors return nil.
func (p *Pipeline) fetch(ctx context.Context, url string) []byte {
	path := p.cachePath(url)
	if data, err := os.ReadFile(path); err == nil {
		return data
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil
	}
	data := buf.Bytes()

	p.store(path, data)

	return data
}

// store persists fetched bytes to the cache, whole-file and atomically so
// an overlapping run never reads a partial entry. Failure is ignored.
func (p *Pipeline) store(path string, data []byte) {
	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return
	}

	tmp, err := os.CreateTemp(p.cacheDir, "fetch-*")
	if err != nil {
		return
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return
	}
	tmp.Close()
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
	}
}

// resizeImage scales image bytes so the longest side is 2x the target
// size. Prefers sips (which also stamps retina DPI metadata), falls back
// to in-process resampling, passes bytes through unchanged as a last
// resort.
func (p *Pipeline) resizeImage(ctx context.Context, data []byte, size int) []byte {
	if p.sips != "" {
		if out, err := p.sipsResize(ctx, data, size*2); err == nil {
			return out
		} else {
			log.Printf("Warning: sips resize failed: %v", err)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	scaled := resize.Thumbnail(uint(size*2), uint(size*2), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return data
	}
	return buf.Bytes()
}

// sipsResize shells out to sips with a bounded wait, using a temporary
// directory for tool I/O
func (p *Pipeline) sipsResize(ctx context.Context, data []byte, maxSide int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "welcome-resize-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	original := filepath.Join(dir, "original")
	resized := filepath.Join(dir, "resized")
	if err := os.WriteFile(original, data, 0o600); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.toolTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.sips,
		original,
		"-Z", fmt.Sprint(maxSide),
		"-s", "dpiHeight", "144.0",
		"-s", "dpiWidth", "144.0",
		"--out", resized,
	)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(resized)
}

// circleImage applies a circular alpha mask for avatar rendering.
// Prefers magick, falls back to an in-process mask, passes bytes through
// unchanged as a last resort.
func (p *Pipeline) circleImage(ctx context.Context, data []byte) []byte {
	if p.magick != "" {
		if out, err := p.magickCircle(ctx, data); err == nil && len(out) > 0 {
			return out
		} else if err != nil {
			log.Printf("Warning: magick mask failed: %v", err)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, maskCircle(img)); err != nil {
		return data
	}
	return buf.Bytes()
}

// magickCircle shells out to ImageMagick to zero the alpha channel
// outside the inscribed circle, capturing the PNG from stdout
func (p *Pipeline) magickCircle(ctx context.Context, data []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "welcome-circle-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	original := filepath.Join(dir, "original")
	if err := os.WriteFile(original, data, 0o600); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.toolTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.magick,
		original,
		"-alpha", "set",
		"-virtual-pixel", "transparent",
		"-channel", "A",
		"-fx", "hypot(i-w/2,j-h/2) < w/2 ? 1 : 0",
		"png:-",
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// maskCircle returns a copy of img with alpha zeroed outside the largest
// circle inscribed in its bounds
func maskCircle(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	cx := float64(bounds.Min.X+bounds.Max.X) / 2
	cy := float64(bounds.Min.Y+bounds.Max.Y) / 2
	r := float64(bounds.Dx()) / 2

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy > r*r {
				out.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}

	return out
}
