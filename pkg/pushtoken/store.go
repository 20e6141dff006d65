package pushtoken

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwsadler/notifykit/pkg/logger"
)

const (
	keyToken    = "push_token"
	keyDeviceID = "device_id"
	keyEndpoint = "push_endpoint"
)

// Store owns the canonical push token for this device.
type Store struct {
	cache     Cache
	remote    Remote
	registrar Registrar
	log       *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRegistrar attaches a provider endpoint registrar. Without one,
// registration is skipped entirely.
func WithRegistrar(r Registrar) StoreOption {
	return func(s *Store) { s.registrar = r }
}

// WithLogger sets the logger for the Store.
func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore creates a token store over the given local cache and remote
// mirror.
func NewStore(cache Cache, remote Remote, opts ...StoreOption) *Store {
	s := &Store{
		cache:  cache,
		remote: remote,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeviceID returns the stable per-device identifier, generating and caching
// one on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	id, err := s.cache.Get(ctx, keyDeviceID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return "", err
	}

	id = uuid.NewString()
	if err := s.cache.Set(ctx, keyDeviceID, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

// Current returns the last persisted token, or nil when none exists.
func (s *Store) Current(ctx context.Context) (*Token, error) {
	raw, err := s.cache.Get(ctx, keyToken)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var t Token
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("decode cached token: %w", err)
	}
	return &t, nil
}

// Persist stores the token locally and mirrors it to the remote record.
// The local write is authoritative: a remote failure is logged and swallowed,
// Persist still succeeds. Re-persisting the current token is a no-op.
func (s *Store) Persist(ctx context.Context, t *Token) error {
	if t == nil || t.Value == "" || t.UserID == "" {
		return ErrInvalidToken
	}

	if t.DeviceID == "" {
		id, err := s.DeviceID(ctx)
		if err != nil {
			return errors.Join(ErrLocalWriteFailed, err)
		}
		t.DeviceID = id
	}

	cur, err := s.Current(ctx)
	if err == nil && cur != nil && cur.Value == t.Value && cur.UserID == t.UserID {
		return nil
	}

	now := time.Now().UTC()
	t.Active = true
	t.UpdatedAt = now
	if cur != nil && !cur.CreatedAt.IsZero() {
		t.CreatedAt = cur.CreatedAt
	} else {
		t.CreatedAt = now
	}

	raw, err := json.Marshal(t)
	if err != nil {
		return errors.Join(ErrLocalWriteFailed, err)
	}
	if err := s.cache.Set(ctx, keyToken, string(raw)); err != nil {
		return errors.Join(ErrLocalWriteFailed, err)
	}

	if err := s.remote.Save(ctx, t); err != nil {
		s.log.WarnContext(ctx, "remote token write failed, token kept locally",
			logger.UserID(t.UserID), logger.DeviceID(t.DeviceID), logger.Error(err))
	}

	s.register(ctx, t)
	return nil
}

// Clear forgets the current token locally, deactivates the remote record and
// deregisters the provider endpoint. The device identifier survives so the
// next login reuses it. Remote and registrar failures are logged only.
func (s *Store) Clear(ctx context.Context) error {
	cur, err := s.Current(ctx)
	if err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, keyToken); err != nil {
		return fmt.Errorf("clear cached token: %w", err)
	}

	if cur != nil {
		if err := s.remote.Deactivate(ctx, cur.UserID, cur.DeviceID); err != nil {
			s.log.WarnContext(ctx, "remote token deactivation failed",
				logger.UserID(cur.UserID), logger.DeviceID(cur.DeviceID), logger.Error(err))
		}
	}

	if s.registrar != nil {
		if endpoint, err := s.cache.Get(ctx, keyEndpoint); err == nil {
			if err := s.registrar.Deregister(ctx, endpoint); err != nil {
				s.log.WarnContext(ctx, "endpoint deregistration failed", logger.Error(err))
			}
			_ = s.cache.Delete(ctx, keyEndpoint)
		}
	}

	return nil
}

func (s *Store) register(ctx context.Context, t *Token) {
	if s.registrar == nil {
		return
	}

	endpoint, err := s.registrar.Register(ctx, t)
	if err != nil {
		s.log.WarnContext(ctx, "endpoint registration failed",
			logger.UserID(t.UserID), logger.DeviceID(t.DeviceID), logger.Error(err))
		return
	}
	if err := s.cache.Set(ctx, keyEndpoint, endpoint); err != nil {
		s.log.WarnContext(ctx, "caching endpoint id failed", logger.Error(err))
	}
}
