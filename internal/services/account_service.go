package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"accountsvc/internal/models"
	"accountsvc/internal/repositories"
)

var (
	ErrEmailTaken    = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailNotFound = errors.New("email not found")
	ErrInvalidOTP    = errors.New("invalid otp")
	ErrOTPExpired    = errors.New("otp expired")
	// ErrNotVerified covers both a pending account and an unknown email so
	// that login responses cannot be used to enumerate accounts.
	ErrNotVerified        = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountService drives the account lifecycle:
// pending verification at registration, verified after an OTP match,
// password and profile updates on verified accounts.
type AccountService interface {
	Register(name, email, password string) (*models.User, error)
	VerifyEmail(email, otp string) error
	Login(email, password string) (*models.User, string, error)
	ResendOTP(email string) error
	ForgotPasswordChange(email, password string) error
	ProfileDetails(userID int) (*models.User, error)
	UpdateProfile(userID int, name, email, role string) error
	ChangePassword(userID int, password string) error
}

type accountService struct {
	repo   repositories.UserRepository
	emails EmailService
	auth   AuthService
	tokens *TokenService
	otpTTL time.Duration
}

func NewAccountService(
	repo repositories.UserRepository,
	emails EmailService,
	auth AuthService,
	tokens *TokenService,
	otpTTL time.Duration,
) AccountService {
	return &accountService{
		repo:   repo,
		emails: emails,
		auth:   auth,
		tokens: tokens,
		otpTTL: otpTTL,
	}
}

// sendOTP delivers the code out-of-band. Delivery is best-effort: the
// account stays pending either way and the caller never waits on SMTP.
func (s *accountService) sendOTP(email, otp string) {
	if s.emails == nil {
		return
	}
	go func() {
		if err := s.emails.SendOTPEmail(email, otp); err != nil {
			log.Printf("[account][otp] warning: failed to send OTP to %s: %v", email, err)
		}
	}()
}

func (s *accountService) Register(name, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	otp := strconv.Itoa(GenerateOTP())
	expires := time.Now().Add(s.otpTTL)

	user := &models.User{
		Name:            name,
		Email:           email,
		PasswordHash:    hash,
		OTP:             otp,
		OTPExpiresAt:    &expires,
		OTPVerifyStatus: models.OTPStatusPending,
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendOTP(email, otp)
	return user, nil
}

func (s *accountService) VerifyEmail(email, otp string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	if strings.TrimSpace(otp) != user.OTP || user.OTP == "" {
		return ErrInvalidOTP
	}
	if user.OTPExpiresAt != nil && time.Now().After(*user.OTPExpiresAt) {
		return ErrOTPExpired
	}

	if err := s.repo.MarkVerified(email); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

func (s *accountService) Login(email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	// unknown email and unverified account collapse into one error
	user, err := s.repo.GetVerifiedByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotVerified
		}
		return nil, "", fmt.Errorf("get verified user: %w", err)
	}

	if err := s.auth.CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("check password: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *accountService) ResendOTP(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if _, err := s.repo.GetByEmail(email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	// a fresh code always replaces the old one and drops the account
	// back to pending, even if it was already verified
	otp := strconv.Itoa(GenerateOTP())
	if err := s.repo.SetOTP(email, otp, time.Now().Add(s.otpTTL)); err != nil {
		return fmt.Errorf("set otp: %w", err)
	}

	s.sendOTP(email, otp)
	return nil
}

func (s *accountService) ForgotPasswordChange(email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if _, err := s.repo.GetByEmail(email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordByEmail(email, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *accountService) ProfileDetails(userID int) (*models.User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (s *accountService) UpdateProfile(userID int, name, email, role string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := s.repo.UpdateProfile(userID, name, email, role); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *accountService) ChangePassword(userID int, password string) error {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordByID(userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
