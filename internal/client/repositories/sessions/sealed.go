package sessions

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
	"github.com/dmitrijs2005/fmdata/internal/cryptox"
)

// SealedStore encrypts the token before handing the session to the
// wrapped store. The expiry stays in clear so the wrapped store can still
// order writes. The stored token is base64(salt || nonce || ciphertext).
type SealedStore struct {
	inner      Store
	passphrase []byte

	salt []byte
	key  []byte

	mu   sync.Mutex
	keys map[string][]byte
}

func NewSealedStore(inner Store, passphrase string) (*SealedStore, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("sealed store: passphrase is empty")
	}
	salt, err := cryptox.RandomBytes(cryptox.SaltSize)
	if err != nil {
		return nil, err
	}
	pass := []byte(passphrase)
	key := cryptox.DeriveKey(pass, salt)
	return &SealedStore{
		inner:      inner,
		passphrase: pass,
		salt:       salt,
		key:        key,
		keys:       map[string][]byte{string(salt): key},
	}, nil
}

func (s *SealedStore) Load(ctx context.Context) (models.Session, error) {
	sess, err := s.inner.Load(ctx)
	if err != nil || sess.Token == "" {
		return sess, err
	}
	token, err := s.open(sess.Token)
	if err != nil {
		return models.Session{}, err
	}
	sess.Token = token
	return sess, nil
}

func (s *SealedStore) Save(ctx context.Context, next models.Session) (bool, error) {
	if next.Token != "" {
		sealed, err := cryptox.Seal(s.key, []byte(next.Token))
		if err != nil {
			return false, fmt.Errorf("failed to seal session token: %w", err)
		}
		blob := make([]byte, 0, len(s.salt)+len(sealed))
		blob = append(blob, s.salt...)
		blob = append(blob, sealed...)
		next.Token = base64.StdEncoding.EncodeToString(blob)
	}
	return s.inner.Save(ctx, next)
}

func (s *SealedStore) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}

func (s *SealedStore) open(stored string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed session token: %w", err)
	}
	if len(blob) <= cryptox.SaltSize {
		return "", fmt.Errorf("failed to open sealed session token: %w", cryptox.ErrShortCiphertext)
	}
	salt, sealed := blob[:cryptox.SaltSize], blob[cryptox.SaltSize:]

	plain, err := cryptox.Open(s.keyFor(salt), sealed)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed session token: %w", err)
	}
	return string(plain), nil
}

// keyFor returns the key for salt, deriving it once per salt. Sessions
// sealed by other processes carry their own salt.
func (s *SealedStore) keyFor(salt []byte) []byte {
	if bytes.Equal(salt, s.salt) {
		return s.key
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if key, ok := s.keys[string(salt)]; ok {
		return key
	}
	key := cryptox.DeriveKey(s.passphrase, salt)
	s.keys[string(salt)] = key
	return key
}

var _ Store = (*SealedStore)(nil)
