package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"qurba-backend/internal/middleware"
	"qurba-backend/internal/models"
	"qurba-backend/internal/repository"
	"qurba-backend/internal/validation"
)

const refreshTokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	profiles            *repository.ProfileRepo
	whitelist           *repository.WhitelistRepo
	redis               *redis.Client
	jwt                 *middleware.JWTAuth
	internalEmailDomain string
}

func NewAuthService(profiles *repository.ProfileRepo, whitelist *repository.WhitelistRepo, redisClient *redis.Client, jwt *middleware.JWTAuth, internalEmailDomain string) *AuthService {
	return &AuthService{
		profiles:            profiles,
		whitelist:           whitelist,
		redis:               redisClient,
		jwt:                 jwt,
		internalEmailDomain: internalEmailDomain,
	}
}

// Signup creates a learner account. Only whitelisted phones or emails may
// sign up, and the whitelist entry decides the batch.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.Profile, *models.AuthTokens, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, nil, &ValidationError{Fields: fields}
	}

	phone := NormalizePhone(req.Phone)
	if CountDigits(phone) < 10 {
		return nil, nil, &ValidationError{Fields: map[string]string{"phone": "Enter a valid phone number"}}
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	entry, err := s.whitelist.Find(ctx, email, PhoneCandidates(req.Phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, &ForbiddenError{Code: "NOT_WHITELISTED", Message: "This number is not registered for the course. Please apply first."}
	}
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.profiles.GetByPhone(ctx, PhoneCandidates(req.Phone)); err == nil {
		return nil, nil, &ConflictError{Code: "PHONE_TAKEN", Message: "An account with this phone number already exists"}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	if email == "" {
		email = InternalEmail(phone, s.internalEmailDomain)
	} else if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, nil, &ConflictError{Code: "EMAIL_TAKEN", Message: "Email already in use"}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	profile := &models.Profile{
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Gender:       req.Gender,
		Place:        req.Place,
		BatchNumber:  entry.BatchNumber,
		ReferralCode: code,
		SignupSource: req.SignupSource,
		Role:         models.RoleUser,
	}
	if profile.BatchNumber < 1 {
		profile.BatchNumber = 1
	}

	if ref := strings.TrimSpace(req.ReferralCode); ref != "" {
		referrer, err := s.profiles.GetByReferralCode(ctx, strings.ToUpper(ref))
		if err == nil {
			profile.ReferredBy = &referrer.UserID
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, err
		}
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, profile)
	if err != nil {
		return nil, nil, err
	}
	return profile, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	var (
		profile *models.Profile
		err     error
	)
	switch {
	case strings.TrimSpace(req.Phone) != "":
		profile, err = s.profiles.GetByPhone(ctx, PhoneCandidates(req.Phone))
	case strings.TrimSpace(req.Email) != "":
		profile, err = s.profiles.GetByEmail(ctx, strings.TrimSpace(req.Email))
	default:
		return nil, &ValidationError{Fields: map[string]string{"phone": "Phone or email is required"}}
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &UnauthorizedError{Message: "Invalid phone number or password"}
		}
		return nil, err
	}

	if profile.IsBlocked {
		return nil, &ForbiddenError{Code: "ACCOUNT_BLOCKED", Message: "Your account has been blocked. Please contact support."}
	}

	// An admin-enabled reset means the old password no longer counts.
	entry, err := s.whitelist.Find(ctx, profile.Email, PhoneCandidates(profile.Phone))
	if err == nil && entry.PasswordResetEnabled {
		return nil, &ConflictError{Code: "RESET_REQUIRED", Message: "Please set a new password before signing in"}
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid phone number or password"}
	}

	s.profiles.UpdateLastLogin(ctx, profile.UserID)

	return s.issueTokens(ctx, profile)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	userIDStr, err := s.redis.Get(ctx, "refresh:"+refreshToken).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	// Delete old token (rotation)
	s.redis.Del(ctx, "refresh:"+refreshToken)

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Account not found")
	}
	if profile.IsBlocked {
		return nil, &ForbiddenError{Code: "ACCOUNT_BLOCKED", Message: "Your account has been blocked. Please contact support."}
	}

	return s.issueTokens(ctx, profile)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.redis.Del(ctx, "refresh:"+refreshToken).Err()
}

// ResetPassword sets a new password for a phone whose whitelist entry has
// password reset enabled, then turns the flag off again.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.Phone) == "" {
		fields["phone"] = "Phone number is required"
	}
	if len(req.NewPassword) < 6 {
		fields["new_password"] = "Password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	candidates := PhoneCandidates(req.Phone)
	profile, err := s.profiles.GetByPhone(ctx, candidates)
	if err != nil {
		return notFound(err, "No account found for this phone number")
	}

	entry, err := s.whitelist.Find(ctx, profile.Email, candidates)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !entry.PasswordResetEnabled) {
		return &ForbiddenError{Code: "RESET_NOT_ENABLED", Message: "Password reset is not enabled for this account. Please contact support."}
	}
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.profiles.UpdatePassword(ctx, profile.UserID, string(hash)); err != nil {
		return err
	}
	return s.whitelist.SetPasswordReset(ctx, entry.ID, false)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Account not found")
	}
	return profile, nil
}

func (s *AuthService) issueTokens(ctx context.Context, profile *models.Profile) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(profile.UserID, profile.Email, profile.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	err = s.redis.Set(ctx, "refresh:"+refreshToken, profile.UserID.String(), refreshTokenTTL).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(middleware.AccessTokenTTL.Seconds()),
		Role:         profile.Role,
	}, nil
}

func (s *AuthService) uniqueReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		exists, err := s.profiles.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to generate a unique referral code")
}

// NormalizePhone strips whitespace, dashes and a leading plus sign.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimPrefix(b.String(), "+")
}

// PhoneCandidates lists the stored forms a phone number may have been saved
// under: cleaned, cleaned with a plus prefix, and exactly as typed.
func PhoneCandidates(raw string) []string {
	cleaned := NormalizePhone(raw)
	candidates := []string{cleaned, "+" + cleaned}
	if trimmed := strings.TrimSpace(raw); trimmed != cleaned && trimmed != "+"+cleaned {
		candidates = append(candidates, trimmed)
	}
	return candidates
}

func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// InternalEmail builds the placeholder address used for accounts that signed
// up with a phone number only.
func InternalEmail(phone, domain string) string {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) > 10 {
		d = d[len(d)-10:]
	}
	return d + "@" + domain
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateReferralCode() (string, error) {
	b := make([]byte, 8)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		b[i] = referralAlphabet[n.Int64()]
	}
	return string(b), nil
}
