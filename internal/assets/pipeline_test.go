// ===== internal/assets/pipeline_test.go =====
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welcome/internal/config"
)

// testPipeline builds a pipeline with the external tools disabled so
// tests exercise the deterministic in-process fallbacks
func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.Sips = "welcome-no-such-tool-sips"
	cfg.Magick = "welcome-no-such-tool-magick"
	return NewPipeline(cfg)
}

// squarePNG encodes an opaque solid square
func squarePNG(t *testing.T, side int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageCacheHit(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write(squarePNG(t, 100))
	}))
	defer ts.Close()

	p := testPipeline(t)
	ctx := context.Background()

	first := p.Image(ctx, ts.URL+"/avatar.png", 26, false)
	require.NotNil(t, first)
	second := p.Image(ctx, ts.URL+"/avatar.png", 26, false)
	require.NotNil(t, second)

	assert.Equal(t, int32(1), requests.Load(), "second resolve must hit the disk cache")
	assert.Equal(t, first, second)
}

func TestImageFetchFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	p := testPipeline(t)
	assert.Nil(t, p.Image(context.Background(), ts.URL+"/missing.png", 26, true))
}

func TestImageEmptyURL(t *testing.T) {
	p := testPipeline(t)
	assert.Nil(t, p.Image(context.Background(), "", 26, true))
}

func TestImageUndecodableBytesPassThrough(t *testing.T) {
	body := []byte("this is not an image")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer ts.Close()

	p := testPipeline(t)
	got := p.Image(context.Background(), ts.URL+"/broken.png", 26, true)
	assert.Equal(t, body, got, "undecodable bytes degrade to pass-through, not nil")
}

func TestImageResizesAndMasks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(squarePNG(t, 100))
	}))
	defer ts.Close()

	p := testPipeline(t)
	data := p.Image(context.Background(), ts.URL+"/avatar.png", 26, true)
	require.NotNil(t, data)

	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// Longest side scaled to 2x the target size for retina rendering
	bounds := img.Bounds()
	assert.Equal(t, 52, bounds.Dx())
	assert.Equal(t, 52, bounds.Dy())

	// Corners fall outside the inscribed circle and must be transparent;
	// the center stays opaque
	_, _, _, cornerAlpha := img.At(bounds.Min.X, bounds.Min.Y).RGBA()
	assert.Zero(t, cornerAlpha)
	_, _, _, centerAlpha := img.At(bounds.Dx()/2, bounds.Dy()/2).RGBA()
	assert.NotZero(t, centerAlpha)
}

func TestImageRectangularKeepsAspect(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	p := testPipeline(t)
	data := p.Image(context.Background(), ts.URL+"/wide.png", 26, false)
	require.NotNil(t, data)

	scaled, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 52, scaled.Bounds().Dx())
	assert.Equal(t, 26, scaled.Bounds().Dy())
}

func TestMaskCircle(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	masked := maskCircle(img)
	_, _, _, corner := masked.At(0, 0).RGBA()
	assert.Zero(t, corner)
	_, _, _, center := masked.At(20, 20).RGBA()
	assert.NotZero(t, center)
}

func TestMenubarIconDecodes(t *testing.T) {
	for _, count := range []int{-1, 0, 1, 7} {
		data, err := base64.StdEncoding.DecodeString(MenubarIcon(count))
		require.NoError(t, err)
		_, _, err = image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
	}
}
