package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/solarops/installation-tracker/internal/core/domain"
)

// StaticCredential is a login injected through process configuration.
type StaticCredential struct {
	Index    int
	Username string
	Password string
}

// StaticUsers is the read-only set of configuration-defined identities.
// It is built once and never mutated afterwards.
type StaticUsers struct {
	byName map[string]domain.User
	order  []string
}

// NewStaticUsers hashes every credential. Entries with an empty username, or
// with a password that is empty or longer than bcrypt accepts, are skipped; on a case-insensitive name clash the first entry
// (lowest index, as passed in) wins.
func NewStaticUsers(creds []StaticCredential, cost int, log zerolog.Logger) (*StaticUsers, error) {
	s := &StaticUsers{byName: make(map[string]domain.User, len(creds))}
	createdAt := domain.Timestamp(time.Now())

	for _, c := range creds {
		username := strings.TrimSpace(c.Username)
		if username == "" {
			log.Warn().Int("index", c.Index).Msg("static user has empty username, skipping")
			continue
		}
		if c.Password == "" {
			log.Warn().Int("index", c.Index).Str("username", username).Msg("static user has no password, skipping")
			continue
		}
		if len(c.Password) > maxPasswordBytes {
			log.Warn().Int("index", c.Index).Str("username", username).Msg("static user password exceeds 72 bytes, skipping")
			continue
		}
		key := strings.ToLower(username)
		if _, dup := s.byName[key]; dup {
			log.Warn().Int("index", c.Index).Str("username", username).Msg("duplicate static user ignored")
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash static user %q: %w", username, err)
		}
		s.byName[key] = domain.User{
			ID:           fmt.Sprintf("env-%d", c.Index),
			Username:     username,
			PasswordHash: string(hash),
			CreatedAt:    createdAt,
		}
		s.order = append(s.order, key)
	}
	return s, nil
}

// Lookup finds a static user by name, ignoring case.
func (s *StaticUsers) Lookup(username string) (domain.User, bool) {
	if s == nil {
		return domain.User{}, false
	}
	u, ok := s.byName[strings.ToLower(strings.TrimSpace(username))]
	return u, ok
}

// List returns the static users in definition order.
func (s *StaticUsers) List() []domain.User {
	if s == nil {
		return nil
	}
	out := make([]domain.User, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byName[k])
	}
	return out
}

func (s *StaticUsers) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
