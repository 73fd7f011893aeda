package inpainting_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trix-studio/trix/pkg/inpainting"
	"github.com/trix-studio/trix/pkg/mask"
	"github.com/trix-studio/trix/pkg/trix/testutil"
)

func sourceImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func TestInpaint_NotConfigured(t *testing.T) {
	c := inpainting.NewClient(inpainting.Config{}, nil)
	assert.False(t, c.Configured())

	_, err := c.Inpaint(context.Background(), inpainting.Request{Image: sourceImage(), Mask: mask.NewBox(0, 0, 1, 1)})
	assert.ErrorIs(t, err, inpainting.ErrNotConfigured)
}

func TestInpaint_SendsPayload(t *testing.T) {
	result := testutil.PNG(t, 16, 16, color.White)

	var captured map[string]map[string]any
	var auth string
	srv := testutil.NewTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(result)
	}))

	c := inpainting.NewClient(inpainting.Config{
		Endpoint:   srv.URL,
		Token:      "hf_secret",
		Timeout:    5 * time.Second,
		TargetSize: 32,
	}, srv.Client())

	out, err := c.Inpaint(context.Background(), inpainting.Request{
		Image:          sourceImage(),
		Mask:           mask.NewBox(4, 4, 8, 8),
		Prompt:         "a red balloon",
		NegativePrompt: "blurry",
		Steps:          25,
		GuidanceScale:  7.5,
		Strength:       0.8,
	})
	require.NoError(t, err)
	assert.Equal(t, result, out)
	assert.Equal(t, "Bearer hf_secret", auth)

	inputs := captured["inputs"]
	require.NotNil(t, inputs)
	assert.Equal(t, "a red balloon", inputs["prompt"])
	assert.Equal(t, "blurry", inputs["negative_prompt"])
	assert.EqualValues(t, 25, inputs["num_inference_steps"])
	assert.EqualValues(t, 7.5, inputs["guidance_scale"])
	assert.EqualValues(t, 0.8, inputs["strength"])

	maskPNG, err := base64.StdEncoding.DecodeString(inputs["mask_image"].(string))
	require.NoError(t, err)
	maskImg, err := png.Decode(bytes.NewReader(maskPNG))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), maskImg.Bounds())
	r, _, _, _ := maskImg.At(6, 6).RGBA()
	assert.EqualValues(t, 0xffff, r)
	r, _, _, _ = maskImg.At(20, 20).RGBA()
	assert.EqualValues(t, 0, r)

	srcPNG, err := base64.StdEncoding.DecodeString(inputs["image"].(string))
	require.NoError(t, err)
	srcImg, err := png.Decode(bytes.NewReader(srcPNG))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), srcImg.Bounds())
}

func TestInpaint_NonOKStatus(t *testing.T) {
	calls := 0
	srv := testutil.NewTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"model is loading"}`))
	}))

	c := inpainting.NewClient(inpainting.Config{Endpoint: srv.URL, Token: "t"}, srv.Client())
	_, err := c.Inpaint(context.Background(), inpainting.Request{Image: sourceImage(), Mask: mask.NewBox(0, 0, 5, 5)})

	var statusErr *inpainting.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Contains(t, statusErr.Body, "model is loading")
	assert.Equal(t, 1, calls, "failed calls are not retried")
}

func TestInpaint_InvalidMaskNeverCallsAPI(t *testing.T) {
	called := false
	srv := testutil.NewTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	c := inpainting.NewClient(inpainting.Config{Endpoint: srv.URL, Token: "t"}, srv.Client())
	_, err := c.Inpaint(context.Background(), inpainting.Request{Image: sourceImage(), Mask: mask.Request{Kind: "lasso"}})
	assert.ErrorIs(t, err, mask.ErrInvalidMaskRequest)
	assert.False(t, called)
}

func TestInpaint_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := testutil.NewTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)

	c := inpainting.NewClient(inpainting.Config{Endpoint: srv.URL, Token: "t", Timeout: 50 * time.Millisecond}, srv.Client())
	_, err := c.Inpaint(context.Background(), inpainting.Request{Image: sourceImage(), Mask: mask.NewBox(0, 0, 5, 5)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("INPAINTING_API_URL", "")
	t.Setenv("HUGGINGFACE_API_TOKEN", " tok ")
	t.Setenv("INPAINTING_TIMEOUT", "15s")
	t.Setenv("INPAINTING_TARGET_SIZE", "256")

	cfg := inpainting.ConfigFromEnv()
	assert.Equal(t, inpainting.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 256, cfg.TargetSize)
}

func TestLanczos3Kernel(t *testing.T) {
	assert.Equal(t, 1.0, inpainting.Lanczos3.At(0))
	assert.InDelta(t, 0, inpainting.Lanczos3.At(1), 1e-12)
	assert.InDelta(t, 0, inpainting.Lanczos3.At(-2), 1e-12)
	assert.Zero(t, inpainting.Lanczos3.At(3))
	assert.Less(t, inpainting.Lanczos3.At(1.5), 0.0)
	assert.Equal(t, inpainting.Lanczos3.At(0.4), inpainting.Lanczos3.At(-0.4))
}

func TestResize_KeepsSolidColour(t *testing.T) {
	out := inpainting.Resize(sourceImage(), 16)
	require.Equal(t, image.Rect(0, 0, 16, 16), out.Bounds())
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := out.RGBAAt(x, y)
			assert.InDelta(t, 200, int(c.R), 1)
			assert.InDelta(t, 10, int(c.G), 1)
			assert.InDelta(t, 255, int(c.A), 1)
		}
	}
}
