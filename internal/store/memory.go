package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore implementa UserStore en memoria (dev/testing).
// Los registros no expiran: un user store no es un cache.
type MemoryStore struct {
	c *gocache.Cache

	// go-cache es atómico por operación; el read-modify-write de Update
	// necesita su propio lock.
	mu sync.Mutex
}

func NewMemory() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, 0)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) FindOrCreate(ctx context.Context, u User) (User, bool, error) {
	now := time.Now().UTC()
	cand := u
	cand.ID = uuid.NewString()
	cand.CreatedAt = now
	cand.UpdatedAt = now

	// Add falla si la key ya existe: eso resuelve la carrera de creación
	// igual que la constraint de unicidad en pg.
	if err := s.c.Add(u.Key, cand, gocache.NoExpiration); err == nil {
		return cand, true, nil
	}

	v, ok := s.c.Get(u.Key)
	if !ok {
		// Carrera Add-fail / Get-miss: prácticamente imposible sin Delete,
		// pero no inventamos un registro.
		return User{}, false, ErrNotFound
	}
	return v.(User), false, nil
}

func (s *MemoryStore) Update(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.c.Get(key)
	if !ok {
		return ErrNotFound
	}
	u := v.(User)
	for f, val := range fields {
		switch f {
		case FieldFirstName:
			u.FirstName = val
		case FieldLastName:
			u.LastName = val
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	s.c.Set(key, u, gocache.NoExpiration)
	return nil
}
