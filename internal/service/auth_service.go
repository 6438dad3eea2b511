package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/models"
	"github.com/noah-isme/interview-agent-api/internal/repository"
)

// Account roles carried in access tokens.
const (
	RoleCandidate = "candidate"
	RoleCompany   = "company"
	RoleAdmin     = "admin"
)

// Principal is the authenticated caller.
type Principal struct {
	ID   string
	Role string
}

// CanAccess reports whether the principal is a party to the interview.
func (p Principal) CanAccess(interview models.Interview) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleCandidate:
		return p.ID != "" && p.ID == interview.CandidateID
	case RoleCompany:
		return p.ID != "" && p.ID == interview.CompanyID
	default:
		return false
	}
}

// AuthConfig controls password hashing and token issuance.
type AuthConfig struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
}

// AuthService registers and authenticates candidates and companies.
type AuthService interface {
	RegisterCandidate(ctx context.Context, req dto.CandidateRegisterRequest) (dto.AuthResponse, error)
	RegisterCompany(ctx context.Context, req dto.CompanyRegisterRequest) (dto.AuthResponse, error)
	LoginCandidate(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	LoginCompany(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
}

type authService struct {
	candidates repository.CandidateRepository
	companies  repository.CompanyRepository
	cfg        AuthConfig
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService constructs an auth service.
func NewAuthService(candidates repository.CandidateRepository, companies repository.CompanyRepository, cfg AuthConfig, validate *validator.Validate, logger zerolog.Logger) AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.BcryptCost < bcrypt.MinCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &authService{
		candidates: candidates,
		companies:  companies,
		cfg:        cfg,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) RegisterCandidate(ctx context.Context, req dto.CandidateRegisterRequest) (dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, validationFailure(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return dto.AuthResponse{}, &Error{Kind: KindValidation, Message: "password cannot be used", Err: err}
	}

	candidate := models.Candidate{
		Email:           req.Email,
		PasswordHash:    string(hash),
		FullName:        cleanText(s.sanitizer, req.FullName),
		Phone:           cleanText(s.sanitizer, req.Phone),
		JobRole:         cleanText(s.sanitizer, req.JobRole),
		Skills:          cleanList(s.sanitizer, req.Skills),
		ExperienceYears: req.ExperienceYears,
		Education:       cleanText(s.sanitizer, req.Education),
		PreviousRoles:   cleanList(s.sanitizer, req.PreviousRoles),
		Certifications:  cleanList(s.sanitizer, req.Certifications),
	}

	if err := s.candidates.Create(ctx, &candidate); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return dto.AuthResponse{}, ErrEmailTaken
		}
		return dto.AuthResponse{}, storeFailure(err)
	}

	s.logger.Info().Str("candidate_id", candidate.ID).Msg("candidate registered")

	return s.issue(dto.AccountResponse{
		ID:    candidate.ID,
		Email: candidate.Email,
		Name:  candidate.FullName,
		Role:  RoleCandidate,
	})
}

func (s *authService) RegisterCompany(ctx context.Context, req dto.CompanyRegisterRequest) (dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, validationFailure(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return dto.AuthResponse{}, &Error{Kind: KindValidation, Message: "password cannot be used", Err: err}
	}

	company := models.Company{
		Email:        req.Email,
		PasswordHash: string(hash),
		CompanyName:  cleanText(s.sanitizer, req.CompanyName),
	}

	if err := s.companies.Create(ctx, &company); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return dto.AuthResponse{}, ErrEmailTaken
		}
		return dto.AuthResponse{}, storeFailure(err)
	}

	s.logger.Info().Str("company_id", company.ID).Msg("company registered")

	return s.issue(dto.AccountResponse{
		ID:    company.ID,
		Email: company.Email,
		Name:  company.CompanyName,
		Role:  RoleCompany,
	})
}

func (s *authService) LoginCandidate(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, validationFailure(err)
	}

	candidate, err := s.candidates.GetByEmail(ctx, req.Email)
	if err != nil {
		return dto.AuthResponse{}, credentialsFailure(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(candidate.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(dto.AccountResponse{
		ID:    candidate.ID,
		Email: candidate.Email,
		Name:  candidate.FullName,
		Role:  RoleCandidate,
	})
}

func (s *authService) LoginCompany(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, validationFailure(err)
	}

	company, err := s.companies.GetByEmail(ctx, req.Email)
	if err != nil {
		return dto.AuthResponse{}, credentialsFailure(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(dto.AccountResponse{
		ID:    company.ID,
		Email: company.Email,
		Name:  company.CompanyName,
		Role:  RoleCompany,
	})
}

func (s *authService) issue(account dto.AccountResponse) (dto.AuthResponse, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.cfg.TTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   account.ID,
		"role":  account.Role,
		"email": account.Email,
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return dto.AuthResponse{}, &Error{Kind: KindStoreFailure, Message: "token issuance failed", Err: err}
	}

	return dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		Account:     account,
	}, nil
}

func credentialsFailure(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidCredentials
	}
	return storeFailure(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
