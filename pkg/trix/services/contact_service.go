package services

import (
	"context"
	"strings"

	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/repositories"
	"go.uber.org/zap"
)

type ContactService struct {
	repo repositories.SocialRepository
}

func NewContactService(repo repositories.SocialRepository) *ContactService {
	return &ContactService{repo: repo}
}

func (s *ContactService) Submit(ctx context.Context, in *models.ContactInput) (*models.ContactResult, error) {
	m := &models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: in.Message,
	}
	if err := s.repo.SaveContact(ctx, m); err != nil {
		return nil, err
	}
	zap.L().Info("contact message stored", zap.Uint("id", m.ID), zap.String("subject", m.Subject))
	return &models.ContactResult{Id: m.ID, Message: "Thank you for your message. We will get back to you soon."}, nil
}
