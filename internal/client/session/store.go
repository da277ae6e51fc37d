package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mithaimart/internal/client/models"
	"github.com/dmitrijs2005/mithaimart/internal/client/repositories/metadata"
)

// StorageKey is the metadata key holding the persisted session JSON.
const StorageKey = "session"

// ErrMalformed marks a persisted record that cannot be used.
var ErrMalformed = errors.New("persisted session is malformed")

// Store persists the signed-in session between runs.
type Store interface {
	// Load returns common.ErrNotFound when nothing is stored and an error
	// matching ErrMalformed when the record cannot be decoded.
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}

// MetadataStore keeps the session as one JSON value in the metadata table.
type MetadataStore struct {
	repo metadata.Repository
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo}
}

func (s *MetadataStore) Load(ctx context.Context) (*models.Session, error) {
	raw, err := s.repo.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !usable(&sess) {
		return nil, ErrMalformed
	}

	return &sess, nil
}

func (s *MetadataStore) Save(ctx context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.repo.Set(ctx, StorageKey, raw)
}

func (s *MetadataStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, StorageKey)
}

// usable reports whether s carries a token and a user with an id and a
// known role.
func usable(s *models.Session) bool {
	return s != nil && s.Token != "" && s.User.ID != "" && s.User.Role.IsValid()
}
