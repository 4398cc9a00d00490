package sessions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
	"github.com/dmitrijs2005/fmdata/internal/client/repositories/metadata"
)

const sqliteKeyPrefix = "session:"

// SQLiteStore keeps the session as JSON under one key of the local
// metadata table.
type SQLiteStore struct {
	repo metadata.Repository
	key  string
}

func NewSQLiteStore(repo metadata.Repository, namespace string) *SQLiteStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &SQLiteStore{repo: repo, key: sqliteKeyPrefix + namespace}
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Session, error) {
	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return models.Session{}, err
	}
	return decodeSession(raw)
}

func (s *SQLiteStore) Save(ctx context.Context, next models.Session) (bool, error) {
	data, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("failed to encode session: %w", err)
	}

	written := false
	err = s.repo.Update(ctx, s.key, func(current []byte) ([]byte, bool, error) {
		stored, err := decodeSession(current)
		if err != nil {
			// An unreadable row is replaced rather than kept forever.
			stored = models.Session{}
		}
		if !newer(next, stored) {
			return nil, false, nil
		}
		written = true
		return data, true, nil
	})
	if err != nil {
		return false, err
	}
	return written, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, s.key)
}

func decodeSession(raw []byte) (models.Session, error) {
	if len(raw) == 0 {
		return models.Session{}, nil
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return sess, nil
}

var _ Store = (*SQLiteStore)(nil)
