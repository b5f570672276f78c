package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/guregu/null.v4"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/notify"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrUserAlreadyExists = errors.New("email already exists")
var ErrAccountNotVerified = errors.New("account not verified")
var ErrAlreadyVerified = errors.New("user not found or already verified")
var ErrInvalidOTP = errors.New("invalid or expired OTP")
var ErrTokenInvalid = errors.New("token is invalid or expired")

const otpTTL = 10 * time.Minute

type AuthService struct {
	userRepo      repository.UserRepository
	logRepo       repository.LogRepository
	mailer        Mailer
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(userRepo repository.UserRepository, logRepo repository.LogRepository, mailer Mailer, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		logRepo:       logRepo,
		mailer:        mailer,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// generateOTP returns a 6-digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generating OTP: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// Register creates an unverified account and mails it an OTP code.
func (s *AuthService) Register(ctx context.Context, dto domain.RegisterUserDTO) (*domain.User, notify.DeliveryStatus, error) {
	existing, err := s.userRepo.FindByEmail(ctx, dto.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("checking existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	otpCode, err := generateOTP()
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Name:         dto.Name,
		Email:        dto.Email,
		Password:     string(hashedPassword),
		Role:         domain.RoleUser,
		IsVerified:   false,
		OtpCode:      null.StringFrom(otpCode),
		OtpExpiresAt: null.TimeFrom(time.Now().Add(otpTTL)),
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	mailStatus := s.mailer.SendOTP(created.Email, otpCode)
	recordAction(ctx, s.logRepo, created.ID, fmt.Sprintf("User %s registered", created.Email))
	return created, mailStatus, nil
}

// VerifyOTP completes registration by checking the mailed code.
func (s *AuthService) VerifyOTP(ctx context.Context, dto domain.VerifyOtpDTO) error {
	user, err := s.userRepo.FindByID(ctx, dto.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAlreadyVerified
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	if !user.OtpCode.Valid || user.OtpCode.String != dto.OtpCode ||
		!user.OtpExpiresAt.Valid || user.OtpExpiresAt.Time.Before(time.Now()) {
		return ErrInvalidOTP
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("marking user verified: %w", err)
	}
	recordAction(ctx, s.logRepo, user.ID, fmt.Sprintf("User %s verified", user.Email))
	return nil
}

// ResendOTP regenerates the code for an unverified account and mails it again.
func (s *AuthService) ResendOTP(ctx context.Context, userID int) (notify.DeliveryStatus, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAlreadyVerified
		}
		return "", fmt.Errorf("loading user: %w", err)
	}
	if user.IsVerified {
		return "", ErrAlreadyVerified
	}

	otpCode, err := generateOTP()
	if err != nil {
		return "", err
	}
	if err := s.userRepo.UpdateOTP(ctx, user.ID, otpCode, time.Now().Add(otpTTL)); err != nil {
		return "", fmt.Errorf("storing OTP: %w", err)
	}
	return s.mailer.SendOTP(user.Email, otpCode), nil
}

// Login verifies the credentials and issues a signed token. Unverified
// accounts are refused before the password is even checked.
func (s *AuthService) Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.Itoa(user.ID),
		"role": string(user.Role),
		"exp":  now.Add(s.jwtExpiration).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	recordAction(ctx, s.logRepo, user.ID, fmt.Sprintf("User %s logged in", user.Email))
	return &domain.AuthResponseDTO{Token: tokenString, User: user.Public()}, nil
}

// ValidateToken verifies a bearer token and returns the acting identity.
func (s *AuthService) ValidateToken(tokenString string) (domain.Actor, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return domain.Actor{}, fmt.Errorf("%w: malformed token", ErrTokenInvalid)
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Actor{}, fmt.Errorf("%w: token expired", ErrTokenInvalid)
		default:
			return domain.Actor{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}
	if !token.Valid {
		return domain.Actor{}, ErrTokenInvalid
	}

	sub, okSub := claims["sub"].(string)
	role, okRole := claims["role"].(string)
	if !okSub || !okRole {
		return domain.Actor{}, ErrTokenInvalid
	}
	userID, err := strconv.Atoi(sub)
	if err != nil {
		return domain.Actor{}, ErrTokenInvalid
	}
	return domain.Actor{ID: userID, Role: domain.Role(role)}, nil
}
