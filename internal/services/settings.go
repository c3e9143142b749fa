package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"qurba-backend/internal/models"
	"qurba-backend/internal/repository"
)

type SettingsService struct {
	repo             *repository.SettingsRepo
	defaultTotalDays int
}

func NewSettingsService(repo *repository.SettingsRepo, defaultTotalDays int) *SettingsService {
	if defaultTotalDays <= 0 {
		defaultTotalDays = 30
	}
	return &SettingsService{repo: repo, defaultTotalDays: defaultTotalDays}
}

// TotalDays returns the configured course length, falling back to the default
// when the setting is missing or not a positive number.
func (s *SettingsService) TotalDays(ctx context.Context) (int, error) {
	setting, err := s.repo.Get(ctx, models.SettingTotalDays)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.defaultTotalDays, nil
	}
	if err != nil {
		return 0, err
	}
	return parseTotalDays(setting.Value, s.defaultTotalDays), nil
}

func (s *SettingsService) SetTotalDays(ctx context.Context, days int) error {
	if days < 1 || days > 365 {
		return &ValidationError{Fields: map[string]string{"total_days": "Must be between 1 and 365"}}
	}
	return s.repo.Set(ctx, models.SettingTotalDays, strconv.Itoa(days))
}

func (s *SettingsService) Stats(ctx context.Context) (*models.AdminStats, error) {
	return s.repo.Stats(ctx)
}

func parseTotalDays(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
