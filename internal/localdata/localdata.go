// Package localdata is the durable client-side key-value store. It
// holds two kinds of state, separately namespaced: the anonymous
// visitor's like/rating maps, and the authenticated session (bearer
// token plus the last serialized profile). Both survive a restart.
//
// Anonymous interaction state is never sent over the wire, and starting
// an authenticated session abandons it rather than merging it: the
// server becomes authoritative and the local maps simply stop being
// read until logout.
package localdata

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

const (
	prefixLike   = "anon:like:"
	prefixRating = "anon:rating:"

	keyToken   = "session:token"
	keyProfile = "session:profile"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the store at path. An empty path opens an
// in-memory store, used by tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is too chatty for a client
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsLiked reports whether the anonymous viewer has liked the recipe.
func (s *Store) IsLiked(id string) bool {
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(prefixLike + id))
		found = err == nil
		return nil
	})
	return found
}

// ToggleLiked flips the anonymous like for the recipe and returns the
// new state. Unliking removes the key entirely, so a double toggle
// leaves no trace.
func (s *Store) ToggleLiked(id string) (bool, error) {
	liked := false
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixLike + id)
		if _, err := txn.Get(key); err == nil {
			return txn.Delete(key)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		liked = true
		return txn.Set(key, []byte("1"))
	})
	if err != nil {
		return false, fmt.Errorf("toggle like %s: %w", id, err)
	}
	return liked, nil
}

// Rating returns the anonymous rating for the recipe, 0 if unset.
func (s *Store) Rating(id string) int {
	rating := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixRating + id))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			rating, _ = strconv.Atoi(string(val))
			return nil
		})
	})
	return rating
}

// SetRating stores an anonymous rating. The value must be in [1,5].
func (s *Store) SetRating(id string, rating int) error {
	if rating < 1 || rating > 5 {
		return errors.Validationf("rating %d out of range [1,5]", rating)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixRating+id), []byte(strconv.Itoa(rating)))
	})
	if err != nil {
		return fmt.Errorf("set rating %s: %w", id, err)
	}
	return nil
}

// ClearInteractions deletes every anonymous like and rating. Only ever
// called on explicit user action; a login does not clear them.
func (s *Store) ClearInteractions() error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, prefix := range []string{prefixLike, prefixRating} {
			it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix)})
			var keys [][]byte
			for it.Rewind(); it.Valid(); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
			}
			it.Close()
			for _, k := range keys {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Token returns the persisted bearer token, empty when logged out.
func (s *Store) Token() string {
	var token string
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyToken))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	return token
}

// SetToken persists the bearer token.
func (s *Store) SetToken(token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyToken), []byte(token))
	})
}

// Profile returns the persisted profile snapshot. A corrupted payload
// is cleared and reported as absent, matching the startup behavior of
// dropping unreadable session state instead of failing.
func (s *Store) Profile() (types.UserProfile, bool) {
	var raw []byte
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyProfile))
		if err != nil {
			return nil
		}
		raw, _ = item.ValueCopy(nil)
		return nil
	})
	if raw == nil {
		return types.UserProfile{}, false
	}

	var profile types.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		s.logger.Warn("dropping corrupted persisted profile", "error", err)
		_ = s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(keyProfile))
		})
		return types.UserProfile{}, false
	}
	return profile, true
}

// SetProfile persists a profile snapshot.
func (s *Store) SetProfile(profile types.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyProfile), data)
	})
}

// ClearSession removes the token and profile snapshot, leaving the
// anonymous maps untouched.
func (s *Store) ClearSession() error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(keyToken)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete([]byte(keyProfile)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}
