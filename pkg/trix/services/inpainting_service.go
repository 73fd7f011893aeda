package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/google/uuid"
	"github.com/trix-studio/trix/pkg/inpainting"
	"github.com/trix-studio/trix/pkg/mask"
	"github.com/trix-studio/trix/pkg/storage"
	"github.com/trix-studio/trix/pkg/trix/models"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// Inpainter runs one inpainting job and returns the encoded result image.
type Inpainter interface {
	Configured() bool
	Inpaint(ctx context.Context, req inpainting.Request) ([]byte, error)
}

type InpaintingService struct {
	ai     Inpainter
	store  storage.Store
	device string
}

func NewInpaintingService(ai Inpainter, store storage.Store) *InpaintingService {
	return &InpaintingService{ai: ai, store: store, device: "Hugging Face API"}
}

// Upload stores an image for later inpainting under uploads/.
func (s *InpaintingService) Upload(ctx context.Context, image *Upload) (*models.UploadResult, error) {
	if image == nil || image.Body == nil {
		return nil, ErrImageRequired
	}
	if !image.IsImage() {
		return nil, ErrNotAnImage
	}
	key, err := uploadKey("uploads", "upload_", image.Name)
	if err != nil {
		return nil, err
	}
	if _, err := saveUpload(ctx, s.store, key, image); err != nil {
		return nil, err
	}
	return &models.UploadResult{
		FilePath: key,
		FileUrl:  s.store.URL(key),
		Message:  "Image uploaded successfully!",
	}, nil
}

// Inpaint loads a stored image, repaints the masked region and stores the
// result under inpainted/.
func (s *InpaintingService) Inpaint(ctx context.Context, in *models.InpaintInput) (*models.InpaintResult, error) {
	imagePath := strings.TrimLeft(strings.TrimSpace(in.ImagePath), "/")
	if imagePath == "" || in.MaskData == nil {
		return nil, fmt.Errorf("%w: missing required parameters: imagePath or maskData", ErrInvalidInput)
	}
	if err := in.MaskData.Validate(); err != nil {
		return nil, err
	}
	if s.ai == nil || !s.ai.Configured() {
		return nil, ErrAIUnavailable
	}

	src, err := s.loadImage(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	req := inpainting.Request{
		Image:          src,
		Mask:           *in.MaskData,
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Steps:          inpainting.DefaultSteps,
		GuidanceScale:  inpainting.DefaultGuidanceScale,
		Strength:       inpainting.DefaultStrength,
	}
	if in.NumInferenceSteps != nil {
		req.Steps = *in.NumInferenceSteps
	}
	if in.GuidanceScale != nil {
		req.GuidanceScale = *in.GuidanceScale
	}
	if in.Strength != nil {
		req.Strength = *in.Strength
	}

	out, err := s.ai.Inpaint(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, mask.ErrInvalidMaskRequest):
			return nil, err
		case errors.Is(err, inpainting.ErrNotConfigured):
			return nil, ErrAIUnavailable
		}
		zap.L().Error("inpainting failed", zap.String("image", imagePath), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInferenceFailed, err)
	}

	result, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: model returned an unreadable image: %v", ErrInferenceFailed, err)
	}
	encoded, err := mask.EncodePNG(result)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("inpainted/inpainted_%s.png", strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err := s.store.Save(ctx, key, bytes.NewReader(encoded), int64(len(encoded)), "image/png"); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}
	zap.L().Info("inpainting completed", zap.String("image", imagePath), zap.String("result", key))

	return &models.InpaintResult{
		ResultPath: key,
		ResultUrl:  s.store.URL(key),
		Message:    "Inpainting completed successfully via API!",
	}, nil
}

func (s *InpaintingService) loadImage(ctx context.Context, key string) (image.Image, error) {
	if strings.Contains(key, "..") {
		return nil, fmt.Errorf("%w: invalid image path", ErrInvalidInput)
	}
	rc, err := s.store.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: image file not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: image could not be decoded: %v", ErrInvalidInput, err)
	}
	return img, nil
}

// Status reports whether inpainting can be served.
func (s *InpaintingService) Status() *models.AIStatus {
	if s.ai == nil || !s.ai.Configured() {
		return &models.AIStatus{
			Available: false,
			Message:   "AI functionality not available. Please check configuration.",
		}
	}
	return &models.AIStatus{
		Available:     true,
		Message:       "AI functionality available via Hugging Face API",
		Device:        s.device,
		ApiConfigured: true,
	}
}
