package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/repository"
)

// CandidateService manages candidate profiles.
type CandidateService interface {
	Profile(ctx context.Context, candidateID string) (dto.CandidateResponse, error)
	UpdateProfile(ctx context.Context, candidateID string, req dto.CandidateUpdateRequest) (dto.CandidateResponse, error)
	Details(ctx context.Context, candidateID string) (dto.CandidateResponse, error)
}

type candidateService struct {
	repo      repository.CandidateRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCandidateService constructs a candidate service.
func NewCandidateService(repo repository.CandidateRepository, validate *validator.Validate, logger zerolog.Logger) CandidateService {
	return &candidateService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "candidate_service").Logger(),
	}
}

func (s *candidateService) Profile(ctx context.Context, candidateID string) (dto.CandidateResponse, error) {
	candidate, err := s.repo.GetByID(ctx, candidateID)
	if err != nil {
		return dto.CandidateResponse{}, notFoundOr(err, ErrCandidateNotFound)
	}
	return dto.NewCandidateResponse(candidate), nil
}

func (s *candidateService) UpdateProfile(ctx context.Context, candidateID string, req dto.CandidateUpdateRequest) (dto.CandidateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CandidateResponse{}, validationFailure(err)
	}

	candidate, err := s.repo.GetByID(ctx, candidateID)
	if err != nil {
		return dto.CandidateResponse{}, notFoundOr(err, ErrCandidateNotFound)
	}

	if req.FullName != nil {
		if name := cleanText(s.sanitizer, *req.FullName); name != "" {
			candidate.FullName = name
		}
	}
	if req.Phone != nil {
		candidate.Phone = cleanText(s.sanitizer, *req.Phone)
	}
	if req.JobRole != nil {
		candidate.JobRole = cleanText(s.sanitizer, *req.JobRole)
	}
	if req.Skills != nil {
		candidate.Skills = cleanList(s.sanitizer, req.Skills)
	}
	if req.ExperienceYears != nil {
		candidate.ExperienceYears = *req.ExperienceYears
	}
	if req.Education != nil {
		candidate.Education = cleanText(s.sanitizer, *req.Education)
	}
	if req.PreviousRoles != nil {
		candidate.PreviousRoles = cleanList(s.sanitizer, req.PreviousRoles)
	}
	if req.Certifications != nil {
		candidate.Certifications = cleanList(s.sanitizer, req.Certifications)
	}

	if err := s.repo.Update(ctx, &candidate); err != nil {
		return dto.CandidateResponse{}, storeFailure(err)
	}

	s.logger.Info().Str("candidate_id", candidate.ID).Msg("candidate profile updated")
	return dto.NewCandidateResponse(candidate), nil
}

// Details is the company view of a candidate.
func (s *candidateService) Details(ctx context.Context, candidateID string) (dto.CandidateResponse, error) {
	return s.Profile(ctx, candidateID)
}
