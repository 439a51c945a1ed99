package jsonfile

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/solarops/installation-tracker/internal/api/metrics"
	"github.com/solarops/installation-tracker/internal/core/domain"
)

var unsafeUsernameChars = regexp.MustCompile(`[^a-z0-9_-]`)

// Config selects where partitions live.
type Config struct {
	// SharedFile holds the shared pool and is the migration source for
	// per-user partitions.
	SharedFile string
	// UserDir holds one <username>.<env>.json file per user.
	UserDir string
	// Env is "production" or "development"; it is part of per-user file names.
	Env string
	// PerUser enables per-user partitions.
	PerUser bool
}

// Partition is the file holding one owner scope's records.
type Partition struct {
	Path   string
	Owner  domain.Identity
	Shared bool
}

// InstallationRepository stores installation records in partition files.
type InstallationRepository struct {
	cfg Config
	log zerolog.Logger
	now func() time.Time
}

func NewInstallationRepository(cfg Config, log zerolog.Logger) *InstallationRepository {
	return &InstallationRepository{cfg: cfg, log: log, now: time.Now}
}

// SanitizeUsername lower-cases and replaces anything outside [a-z0-9_-] with '-'.
func SanitizeUsername(username string) string {
	return unsafeUsernameChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(username)), "-")
}

// PartitionFor picks the caller's file: a per-user file when per-user storage
// is on and the caller has a username, the shared file otherwise.
func (r *InstallationRepository) PartitionFor(owner domain.Identity) Partition {
	if !r.cfg.PerUser || owner.Username == "" {
		return Partition{Path: r.cfg.SharedFile, Owner: owner, Shared: true}
	}
	name := fmt.Sprintf("%s.%s.json", SanitizeUsername(owner.Username), r.cfg.Env)
	return Partition{Path: filepath.Join(r.cfg.UserDir, name), Owner: owner}
}

// Read loads every record of p. A missing file is created on the spot; a new
// per-user partition is first seeded with the caller's records from the
// shared file (best effort).
func (r *InstallationRepository) Read(_ context.Context, p Partition) ([]domain.Installation, error) {
	var recs []domain.Installation
	err := readArray(p.Path, &recs)
	if err == nil {
		if recs == nil {
			recs = []domain.Installation{}
		}
		return recs, nil
	}
	if !isNotExist(err) {
		return nil, err
	}

	if r.cfg.PerUser && !p.Shared && p.Path != r.cfg.SharedFile {
		seeded, err := r.seed(p)
		if err != nil {
			// Leave the partition unwritten so a later request retries the seed.
			metrics.PartitionMigrationsTotal.WithLabelValues("failed").Inc()
			r.log.Warn().Err(err).Str("partition", p.Path).Msg("unable to seed per-user installations")
			return []domain.Installation{}, nil
		}
		if seeded != nil {
			return seeded, nil
		}
	}

	empty := []domain.Installation{}
	if err := writeArray(p.Path, empty); err != nil {
		return nil, err
	}
	return empty, nil
}

// seed copies the records owned by p.Owner from the shared file into p. It
// returns nil, nil when there is no shared file.
func (r *InstallationRepository) seed(p Partition) ([]domain.Installation, error) {
	var shared []domain.Installation
	if err := readArray(r.cfg.SharedFile, &shared); err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	owned := make([]domain.Installation, 0)
	for _, inst := range shared {
		if inst.OwnedBy(p.Owner) {
			owned = append(owned, inst)
		}
	}
	if err := writeArray(p.Path, owned); err != nil {
		return nil, err
	}

	metrics.PartitionMigrationsTotal.WithLabelValues("seeded").Inc()
	r.log.Info().Str("partition", p.Path).Int("records", len(owned)).Msg("per-user partition seeded from shared file")
	return owned, nil
}

// Write overwrites p with recs.
func (r *InstallationRepository) Write(_ context.Context, p Partition, recs []domain.Installation) error {
	if recs == nil {
		recs = []domain.Installation{}
	}
	start := r.now()
	err := writeArray(p.Path, recs)
	metrics.StoreWriteDuration.Observe(time.Since(start).Seconds())
	return err
}

func (r *InstallationRepository) List(ctx context.Context, owner domain.Identity) ([]domain.Installation, error) {
	return r.Read(ctx, r.PartitionFor(owner))
}

func (r *InstallationRepository) FindByID(ctx context.Context, owner domain.Identity, id string) (*domain.Installation, error) {
	recs, err := r.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].ID == id {
			return &recs[i], nil
		}
	}
	return nil, domain.ErrInstallationNotFound
}

func (r *InstallationRepository) Create(ctx context.Context, owner domain.Identity, inst domain.Installation) (*domain.Installation, error) {
	created, err := r.CreateMany(ctx, owner, []domain.Installation{inst})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

func (r *InstallationRepository) CreateMany(ctx context.Context, owner domain.Identity, insts []domain.Installation) ([]domain.Installation, error) {
	p := r.PartitionFor(owner)
	recs, err := r.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	recs = append(recs, insts...)
	if err := r.Write(ctx, p, recs); err != nil {
		return nil, err
	}
	return insts, nil
}

func (r *InstallationRepository) Update(ctx context.Context, owner domain.Identity, id string, next domain.Installation) (*domain.Installation, error) {
	p := r.PartitionFor(owner)
	recs, err := r.Read(ctx, p)
	if err != nil {
		return nil, err
	}

	idx := indexOf(recs, id)
	if idx < 0 {
		return nil, domain.ErrInstallationNotFound
	}
	recs[idx].ApplyUpdate(next, r.now())

	if err := r.Write(ctx, p, recs); err != nil {
		return nil, err
	}
	updated := recs[idx]
	return &updated, nil
}

func (r *InstallationRepository) Delete(ctx context.Context, owner domain.Identity, id string) error {
	p := r.PartitionFor(owner)
	recs, err := r.Read(ctx, p)
	if err != nil {
		return err
	}

	idx := indexOf(recs, id)
	if idx < 0 {
		return domain.ErrInstallationNotFound
	}
	recs = append(recs[:idx], recs[idx+1:]...)
	return r.Write(ctx, p, recs)
}

func indexOf(recs []domain.Installation, id string) int {
	for i := range recs {
		if recs[i].ID == id {
			return i
		}
	}
	return -1
}
