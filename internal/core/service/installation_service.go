package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/solarops/installation-tracker/internal/core/domain"
	"github.com/solarops/installation-tracker/internal/core/ports"
)

// ImportGuard reserves Idempotency-Keys for bulk imports (Redis). Claim must
// be atomic: of two concurrent claims for one key only one may succeed.
type ImportGuard interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

type InstallationService struct {
	repo       ports.InstallationRepository
	normalizer *Normalizer
	guard      ImportGuard
	logger     zerolog.Logger
}

// NewInstallationService wires the record use cases. guard may be nil.
func NewInstallationService(repo ports.InstallationRepository, guard ImportGuard, logger zerolog.Logger) *InstallationService {
	return &InstallationService{
		repo:       repo,
		normalizer: NewNormalizer(),
		guard:      guard,
		logger:     logger,
	}
}

func (s *InstallationService) List(ctx context.Context, caller domain.Identity) ([]domain.Installation, error) {
	return s.repo.List(ctx, caller)
}

func (s *InstallationService) Get(ctx context.Context, caller domain.Identity, id string) (*domain.Installation, error) {
	return s.repo.FindByID(ctx, caller, id)
}

func (s *InstallationService) Create(ctx context.Context, caller domain.Identity, in ports.InstallationInput) (*domain.Installation, error) {
	inst, errs := s.normalizer.Normalize(in, caller)
	if len(errs) > 0 {
		return nil, &domain.ValidationError{Errors: errs}
	}

	created, err := s.repo.Create(ctx, caller, inst)
	if err != nil {
		s.logger.Error().Err(err).Str("username", caller.Username).Msg("failed to create installation")
		return nil, err
	}

	s.logger.Info().Str("id", created.ID).Str("username", caller.Username).Msg("installation created")
	return created, nil
}

// CreateBulk validates every row before touching storage; one bad row
// rejects the whole batch.
func (s *InstallationService) CreateBulk(ctx context.Context, caller domain.Identity, in []ports.InstallationInput, importKey string) (*ports.BulkResult, error) {
	if len(in) == 0 {
		return nil, &domain.ValidationError{Errors: []string{"installations must be a non-empty array"}}
	}

	records := make([]domain.Installation, 0, len(in))
	var failures []domain.BulkFailure
	for i, row := range in {
		inst, errs := s.normalizer.Normalize(row, caller)
		if len(errs) > 0 {
			failures = append(failures, domain.BulkFailure{Index: i, Errors: errs})
			continue
		}
		records = append(records, inst)
	}
	if len(failures) > 0 {
		s.logger.Info().Int("rows", len(in)).Int("rejected", len(failures)).Msg("bulk import rejected")
		return nil, &domain.BulkValidationError{Failures: failures}
	}

	scope := importScope(caller)
	claimed := false
	if importKey != "" && s.guard != nil {
		ok, err := s.guard.Claim(ctx, scope, importKey)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("import_key", importKey).Msg("import guard claim failed, importing anyway")
		case !ok:
			return nil, domain.ErrDuplicateImport
		default:
			claimed = true
		}
	}

	created, err := s.repo.CreateMany(ctx, caller, records)
	if err != nil {
		if claimed {
			if rerr := s.guard.Release(context.WithoutCancel(ctx), scope, importKey); rerr != nil {
				s.logger.Warn().Err(rerr).Str("import_key", importKey).Msg("failed to release import key")
			}
		}
		return nil, fmt.Errorf("bulk import: %w", err)
	}

	s.logger.Info().Int("added", len(created)).Str("username", caller.Username).Msg("bulk import applied")
	return &ports.BulkResult{Added: len(created), Installations: created}, nil
}

func (s *InstallationService) Update(ctx context.Context, caller domain.Identity, id string, in ports.InstallationInput) (*domain.Installation, error) {
	fields, errs := normalizeFields(in)
	if len(errs) > 0 {
		return nil, &domain.ValidationError{Errors: errs}
	}

	updated, err := s.repo.Update(ctx, caller, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", id).Str("username", caller.Username).Msg("installation updated")
	return updated, nil
}

func (s *InstallationService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	if err := s.repo.Delete(ctx, caller, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Str("username", caller.Username).Msg("installation deleted")
	return nil
}

func importScope(caller domain.Identity) string {
	if caller.IsAnonymous() {
		return "shared"
	}
	if caller.ID != "" {
		return caller.ID
	}
	return caller.Username
}
