package services_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trix-studio/trix/pkg/inpainting"
	"github.com/trix-studio/trix/pkg/mask"
	"github.com/trix-studio/trix/pkg/storage"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/services"
	"github.com/trix-studio/trix/pkg/trix/testutil"
)

type stubInpainter struct {
	configured bool
	inpaint    func(ctx context.Context, req inpainting.Request) ([]byte, error)
	calls      int
}

func (s *stubInpainter) Configured() bool { return s.configured }

func (s *stubInpainter) Inpaint(ctx context.Context, req inpainting.Request) ([]byte, error) {
	s.calls++
	return s.inpaint(ctx, req)
}

func newInpaintingEnv(t *testing.T, ai *stubInpainter) (*services.InpaintingService, *storage.LocalStore, string) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	svc := services.NewInpaintingService(ai, store)

	up, err := svc.Upload(context.Background(), pngUpload(t, "photo.png"))
	require.NoError(t, err)
	return svc, store, up.FilePath
}

func box() *mask.Request {
	r := mask.NewBox(1, 1, 4, 4)
	return &r
}

func TestInpaintingService_Upload(t *testing.T) {
	svc, store, key := newInpaintingEnv(t, &stubInpainter{})
	assert.True(t, strings.HasPrefix(key, "uploads/upload_"))
	assert.True(t, strings.HasSuffix(key, "_photo.png"))
	assert.True(t, fileExists(store, key))

	bad := pngUpload(t, "notes.txt")
	bad.ContentType = "text/plain"
	_, err := svc.Upload(context.Background(), bad)
	assert.ErrorIs(t, err, services.ErrNotAnImage)

	_, err = svc.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, services.ErrImageRequired)
}

func TestInpaintingService_Success(t *testing.T) {
	var got inpainting.Request
	ai := &stubInpainter{configured: true, inpaint: func(ctx context.Context, req inpainting.Request) ([]byte, error) {
		got = req
		return testutil.PNG(t, 16, 16, color.RGBA{R: 255, A: 255}), nil
	}}
	svc, store, key := newInpaintingEnv(t, ai)

	res, err := svc.Inpaint(context.Background(), &models.InpaintInput{ImagePath: key, MaskData: box(), Prompt: "a red sky"})
	require.NoError(t, err)

	assert.Regexp(t, `^inpainted/inpainted_[0-9a-f]{32}\.png$`, res.ResultPath)
	assert.Equal(t, "/media/"+res.ResultPath, res.ResultUrl)
	assert.True(t, fileExists(store, res.ResultPath))

	assert.Equal(t, "a red sky", got.Prompt)
	assert.Equal(t, inpainting.DefaultSteps, got.Steps)
	assert.Equal(t, inpainting.DefaultGuidanceScale, got.GuidanceScale)
	assert.Equal(t, inpainting.DefaultStrength, got.Strength)
	assert.Equal(t, image.Rect(0, 0, 8, 8), got.Image.Bounds())
}

func TestInpaintingService_OverridesDefaults(t *testing.T) {
	var got inpainting.Request
	ai := &stubInpainter{configured: true, inpaint: func(ctx context.Context, req inpainting.Request) ([]byte, error) {
		got = req
		return testutil.PNG(t, 4, 4, color.White), nil
	}}
	svc, _, key := newInpaintingEnv(t, ai)
	steps, guidance, strength := 20, 3.5, 0.6

	_, err := svc.Inpaint(context.Background(), &models.InpaintInput{
		ImagePath: key, MaskData: box(),
		NumInferenceSteps: &steps, GuidanceScale: &guidance, Strength: &strength,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, got.Steps)
	assert.Equal(t, 3.5, got.GuidanceScale)
	assert.Equal(t, 0.6, got.Strength)
}

func TestInpaintingService_Errors(t *testing.T) {
	failing := func(ctx context.Context, req inpainting.Request) ([]byte, error) {
		return nil, &inpainting.StatusError{Code: 503, Body: "loading"}
	}

	tests := map[string]struct {
		ai    *stubInpainter
		in    func(key string) *models.InpaintInput
		want  error
		calls int
	}{
		"missing image path": {
			ai:   &stubInpainter{configured: true},
			in:   func(string) *models.InpaintInput { return &models.InpaintInput{MaskData: box()} },
			want: services.ErrInvalidInput,
		},
		"missing mask": {
			ai:   &stubInpainter{configured: true},
			in:   func(key string) *models.InpaintInput { return &models.InpaintInput{ImagePath: key} },
			want: services.ErrInvalidInput,
		},
		"invalid mask": {
			ai:   &stubInpainter{configured: true},
			in:   func(key string) *models.InpaintInput { return &models.InpaintInput{ImagePath: key, MaskData: &mask.Request{Kind: "lasso"}} },
			want: mask.ErrInvalidMaskRequest,
		},
		"not configured": {
			ai:   &stubInpainter{},
			in:   func(key string) *models.InpaintInput { return &models.InpaintInput{ImagePath: key, MaskData: box()} },
			want: services.ErrAIUnavailable,
		},
		"unknown image": {
			ai:   &stubInpainter{configured: true},
			in:   func(string) *models.InpaintInput { return &models.InpaintInput{ImagePath: "uploads/missing.png", MaskData: box()} },
			want: services.ErrNotFound,
		},
		"inference failure": {
			ai:    &stubInpainter{configured: true, inpaint: failing},
			in:    func(key string) *models.InpaintInput { return &models.InpaintInput{ImagePath: key, MaskData: box()} },
			want:  services.ErrInferenceFailed,
			calls: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			svc, _, key := newInpaintingEnv(t, tc.ai)
			_, err := svc.Inpaint(context.Background(), tc.in(key))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, tc.calls, tc.ai.calls)
		})
	}
}

func TestInpaintingService_UnreadableResult(t *testing.T) {
	ai := &stubInpainter{configured: true, inpaint: func(ctx context.Context, req inpainting.Request) ([]byte, error) {
		return []byte("not an image"), nil
	}}
	svc, _, key := newInpaintingEnv(t, ai)

	_, err := svc.Inpaint(context.Background(), &models.InpaintInput{ImagePath: key, MaskData: box()})
	assert.ErrorIs(t, err, services.ErrInferenceFailed)
}

func TestInpaintingService_Status(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	off := services.NewInpaintingService(&stubInpainter{}, store).Status()
	assert.False(t, off.Available)
	assert.False(t, off.ApiConfigured)

	on := services.NewInpaintingService(&stubInpainter{configured: true}, store).Status()
	assert.True(t, on.Available)
	assert.True(t, on.ApiConfigured)
	assert.Equal(t, "Hugging Face API", on.Device)
}
