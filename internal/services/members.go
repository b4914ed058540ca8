package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/repository"
)

// MemberService handles member lookups and login cards
type MemberService struct {
	log      logger.Logger
	repo     repository.MemberRepository
	settings SettingsServicer
}

// NewMemberService creates a new MemberService
func NewMemberService(log logger.Logger, repo repository.MemberRepository, settings SettingsServicer) *MemberService {
	return &MemberService{log: log, repo: repo, settings: settings}
}

// ListMembers returns all members ordered by name
func (s *MemberService) ListMembers(ctx context.Context) ([]models.Member, error) {
	return s.repo.ListMembers(ctx)
}

// GetMember returns a member by membership number
func (s *MemberService) GetMember(ctx context.Context, number string) (*models.Member, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, ErrMemberNumberEmpty
	}
	m, err := s.repo.GetMember(ctx, number)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUnknownSwimmer
		}
		return nil, err
	}
	return m, nil
}

// LoginCardQR generates a QR code PNG that opens the login page with the
// member's number filled in
func (s *MemberService) LoginCardQR(ctx context.Context, number string) ([]byte, error) {
	m, err := s.GetMember(ctx, number)
	if err != nil {
		return nil, err
	}

	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil || baseURL == "" {
		return nil, ErrBaseURLNotConfigured
	}
	loginURL := fmt.Sprintf("%s/login?number=%s", strings.TrimSuffix(baseURL, "/"), url.QueryEscape(m.Number))
	return qrcode.Encode(loginURL, qrcode.Medium, 256)
}
