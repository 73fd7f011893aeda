// Package inpainting forwards inpainting jobs to a hosted diffusion model.
package inpainting

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/trix-studio/trix/pkg/mask"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// ErrNotConfigured is returned when no API token is available.
var ErrNotConfigured = errors.New("inpainting: api token not configured")

// StatusError is returned when the model host answers with anything but 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inpainting: api request failed with status %d: %s", e.Code, e.Body)
}

// Request is a single inpainting job.
type Request struct {
	Image          image.Image
	Mask           mask.Request
	Prompt         string
	NegativePrompt string
	Steps          int
	GuidanceScale  float64
	Strength       float64
}

type payload struct {
	Inputs payloadInputs `json:"inputs"`
}

type payloadInputs struct {
	Prompt            string  `json:"prompt"`
	Image             string  `json:"image"`
	MaskImage         string  `json:"mask_image"`
	NegativePrompt    string  `json:"negative_prompt"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	Strength          float64 `json:"strength"`
}

// Client talks to the inference API. It holds no mutable state and is safe
// for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client; a nil httpClient falls back to a default one.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg.withDefaults(), http: httpClient}
}

// Configured reports whether a bearer token is present.
func (c *Client) Configured() bool {
	return c.cfg.Token != ""
}

// Endpoint is the model URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// Inpaint resizes the source image, rasterizes the mask at the same size and
// posts both to the model host. On success the returned bytes are the encoded
// result image. Failures are returned as-is; there is no retry.
func (c *Client) Inpaint(ctx context.Context, req Request) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if req.Image == nil {
		return nil, errors.New("inpainting: source image is nil")
	}

	src := Resize(req.Image, c.cfg.TargetSize)
	b := src.Bounds()
	maskImg, err := mask.Rasterize(b.Dx(), b.Dy(), req.Mask)
	if err != nil {
		return nil, err
	}

	srcPNG, err := mask.EncodePNG(src)
	if err != nil {
		return nil, err
	}
	maskPNG, err := mask.EncodePNG(maskImg)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload{Inputs: payloadInputs{
		Prompt:            req.Prompt,
		Image:             base64.StdEncoding.EncodeToString(srcPNG),
		MaskImage:         base64.StdEncoding.EncodeToString(maskPNG),
		NegativePrompt:    req.NegativePrompt,
		NumInferenceSteps: req.Steps,
		GuidanceScale:     req.GuidanceScale,
		Strength:          req.Strength,
	}})
	if err != nil {
		return nil, fmt.Errorf("inpainting: marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("inpainting: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	zap.L().Info("starting inpainting api call", zap.String("prompt", req.Prompt), zap.String("endpoint", c.cfg.Endpoint))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("inpainting: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("inpainting: read response: %w", err)
	}
	zap.L().Info("inpainting completed", zap.Int("bytes", len(out)))
	return out, nil
}

// Lanczos3 is the three-lobe Lanczos resampling kernel.
var Lanczos3 = &draw.Kernel{Support: 3, At: lanczos3}

func lanczos3(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t == 0:
		return 1
	case t >= 3:
		return 0
	}
	pt := math.Pi * t
	return 3 * math.Sin(pt) * math.Sin(pt/3) / (pt * pt)
}

// Resize scales img to size×size with Lanczos3 resampling.
func Resize(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	Lanczos3.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
