package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"qurba-backend/internal/models"
	"qurba-backend/internal/progress"
	"qurba-backend/internal/repository"
	"qurba-backend/internal/validation"
)

// AdminService covers learner management: accounts, the signup whitelist,
// applications and the batch reports.
type AdminService struct {
	profiles     *repository.ProfileRepo
	whitelist    *repository.WhitelistRepo
	applications *repository.ApplicationRepo
	materials    *repository.MaterialRepo
	progress     *repository.ProgressRepo
	submissions  *repository.SubmissionRepo
	settings     *SettingsService
	leaderboard  *LeaderboardService
}

type AdminDeps struct {
	Profiles     *repository.ProfileRepo
	Whitelist    *repository.WhitelistRepo
	Applications *repository.ApplicationRepo
	Materials    *repository.MaterialRepo
	Progress     *repository.ProgressRepo
	Submissions  *repository.SubmissionRepo
	Settings     *SettingsService
	Leaderboard  *LeaderboardService
}

func NewAdminService(deps AdminDeps) *AdminService {
	return &AdminService{
		profiles:     deps.Profiles,
		whitelist:    deps.Whitelist,
		applications: deps.Applications,
		materials:    deps.Materials,
		progress:     deps.Progress,
		submissions:  deps.Submissions,
		settings:     deps.Settings,
		leaderboard:  deps.Leaderboard,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	return s.settings.Stats(ctx)
}

// Users

func (s *AdminService) ListUsers(ctx context.Context, batch *int) ([]*models.Profile, error) {
	return s.profiles.ListLearners(ctx, batch)
}

func (s *AdminService) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	return notFound(s.profiles.SetBlocked(ctx, userID, blocked), "User not found")
}

func (s *AdminService) Batches(ctx context.Context) ([]progress.BatchSummary, error) {
	profiles, err := s.profiles.ListLearners(ctx, nil)
	if err != nil {
		return nil, err
	}
	return progress.BatchInfo(toLearners(profiles)), nil
}

// Attendance builds the day-by-day register for one batch.
func (s *AdminService) Attendance(ctx context.Context, batch int) ([]progress.AttendanceRow, error) {
	totalDays, err := s.settings.TotalDays(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListLearners(ctx, &batch)
	if err != nil {
		return nil, err
	}
	learners := toLearners(profiles)

	materials, err := s.materials.ListUpToDay(ctx, totalDays)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(learners))
	for i, l := range learners {
		ids[i] = l.UserID
	}
	completions, err := s.progress.ListForUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	return progress.AttendanceRegister(learners, totalDays, progress.GroupByDay(materials), completions), nil
}

func (s *AdminService) Toppers(ctx context.Context, batch int) ([]progress.Topper, error) {
	return s.leaderboard.Refresh(ctx, batch)
}

func (s *AdminService) UserSubmissions(ctx context.Context, userID uuid.UUID) ([]*models.FormSubmission, error) {
	if _, err := s.profiles.GetByID(ctx, userID); err != nil {
		return nil, notFound(err, "User not found")
	}
	return s.submissions.ListFormsByUser(ctx, userID)
}

// Whitelist

func (s *AdminService) ListWhitelist(ctx context.Context) ([]*models.WhitelistEntry, error) {
	return s.whitelist.List(ctx)
}

func (s *AdminService) AddWhitelist(ctx context.Context, adminID uuid.UUID, req models.WhitelistRequest) (*models.WhitelistEntry, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	entry := &models.WhitelistEntry{BatchNumber: batchOrDefault(req.BatchNumber), AddedBy: &adminID}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		entry.Email = &email
	}
	if phone := NormalizePhone(req.PhoneNumber); phone != "" {
		if CountDigits(phone) < 10 {
			return nil, &ValidationError{Fields: map[string]string{"phone_number": "Enter a valid phone number"}}
		}
		entry.PhoneNumber = &phone
	}
	if entry.Email == nil && entry.PhoneNumber == nil {
		return nil, &ValidationError{Fields: map[string]string{"phone_number": "Enter a phone number or email"}}
	}

	added, err := s.whitelist.Add(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to add whitelist entry: %w", err)
	}
	if !added {
		return nil, &ConflictError{Code: "ALREADY_WHITELISTED", Message: "This phone number or email is already whitelisted"}
	}
	return entry, nil
}

func (s *AdminService) BulkWhitelist(ctx context.Context, adminID uuid.UUID, req models.BulkWhitelistRequest) (*models.BulkWhitelistResult, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	entries, skipped := ParseBulkWhitelist(req.Entries, batchOrDefault(req.BatchNumber))
	for _, e := range entries {
		e.AddedBy = &adminID
	}

	added, err := s.whitelist.AddMany(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to add whitelist entries: %w", err)
	}
	if skipped == nil {
		skipped = []string{}
	}
	return &models.BulkWhitelistResult{Added: added, Skipped: skipped}, nil
}

func (s *AdminService) RemoveWhitelist(ctx context.Context, id uuid.UUID) error {
	return notFound(s.whitelist.Remove(ctx, id), "Whitelist entry not found")
}

func (s *AdminService) SetPasswordReset(ctx context.Context, id uuid.UUID, enabled bool) error {
	return notFound(s.whitelist.SetPasswordReset(ctx, id, enabled), "Whitelist entry not found")
}

// ParseBulkWhitelist splits pasted text on newlines, commas and semicolons.
// Tokens with an @ are emails, tokens with at least ten digits are phones,
// and everything else is returned as skipped.
func ParseBulkWhitelist(text string, batch int) ([]*models.WhitelistEntry, []string) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ';'
	})

	var entries []*models.WhitelistEntry
	var skipped []string
	seen := make(map[string]bool)

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		e := &models.WhitelistEntry{BatchNumber: batch}
		var key string
		switch {
		case strings.Contains(tok, "@"):
			email := strings.ToLower(tok)
			e.Email = &email
			key = email
		case CountDigits(tok) >= 10:
			phone := NormalizePhone(tok)
			e.PhoneNumber = &phone
			key = phone
		default:
			skipped = append(skipped, tok)
			continue
		}

		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, e)
	}
	return entries, skipped
}

// Applications

func (s *AdminService) ListApplications(ctx context.Context, limit, offset int) ([]*models.Application, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.applications.List(ctx, limit, offset)
}

func batchOrDefault(batch int) int {
	if batch < 1 {
		return progress.DefaultBatch
	}
	return batch
}
