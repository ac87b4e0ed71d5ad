// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"AMUZZ_BACK-END/internal/models"
	"AMUZZ_BACK-END/internal/repository"
)

type state struct {
	users     map[uuid.UUID]models.User
	playlists map[uuid.UUID]models.Playlist
	songs     map[uuid.UUID]models.PlaylistSong
}

func (s *state) clone() *state {
	c := &state{
		users:     make(map[uuid.UUID]models.User, len(s.users)),
		playlists: make(map[uuid.UUID]models.Playlist, len(s.playlists)),
		songs:     make(map[uuid.UUID]models.PlaylistSong, len(s.songs)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.playlists {
		c.playlists[k] = v
	}
	for k, v := range s.songs {
		c.songs[k] = v
	}
	return c
}

// MemoryStore is a repository.Store kept in maps. InTx works on a copy of
// the data and swaps it in on success, so rollbacks discard every write.
type MemoryStore struct {
	mu   *sync.Mutex
	data *state
	inTx bool

	PingErr error
}

var _ repository.Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &state{
			users:     map[uuid.UUID]models.User{},
			playlists: map[uuid.UUID]models.Playlist{},
			songs:     map[uuid.UUID]models.PlaylistSong{},
		},
	}
}

func (s *MemoryStore) Users() repository.UserRepository {
	return &memUsers{s}
}

func (s *MemoryStore) Playlists() repository.PlaylistRepository {
	return &memPlaylists{s}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{mu: &sync.Mutex{}, data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return s.PingErr
}

// lock guards a single operation outside of a transaction
func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// User returns a copy of the stored user, for assertions
func (s *MemoryStore) User(id uuid.UUID) (models.User, bool) {
	defer s.lock()()
	u, ok := s.data.users[id]
	return u, ok
}

// UserCount returns the number of stored users
func (s *MemoryStore) UserCount() int {
	defer s.lock()()
	return len(s.data.users)
}

// SongCount returns the number of stored playlist songs across all playlists
func (s *MemoryStore) SongCount() int {
	defer s.lock()()
	return len(s.data.songs)
}

// PutUser stores u as is, for test setup
func (s *MemoryStore) PutUser(u models.User) {
	defer s.lock()()
	s.data.users[u.ID] = u
}

// ---- users ----

type memUsers struct{ s *MemoryStore }

func (r *memUsers) Create(ctx context.Context, u *models.User) error {
	defer r.s.lock()()
	for _, existing := range r.s.data.users {
		switch {
		case existing.Email == u.Email:
			return &repository.DuplicateError{Constraint: repository.ConstraintUsersEmail}
		case existing.Username == u.Username:
			return &repository.DuplicateError{Constraint: repository.ConstraintUsersUsername}
		case u.VerificationToken != nil && existing.VerificationToken != nil &&
			*existing.VerificationToken == *u.VerificationToken:
			return &repository.DuplicateError{Constraint: repository.ConstraintUsersVerification}
		}
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *memUsers) find(match func(models.User) bool) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *memUsers) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.find(func(u models.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *memUsers) GetByVerifiedTokenDigest(ctx context.Context, digest string) (*models.User, error) {
	return r.find(func(u models.User) bool {
		return u.VerifiedTokenDigest != nil && *u.VerifiedTokenDigest == digest
	})
}

func (r *memUsers) update(id uuid.UUID, fn func(*models.User) bool) error {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok || !fn(&u) {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	r.s.data.users[id] = u
	return nil
}

func (r *memUsers) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	return r.update(id, func(u *models.User) bool {
		if u.EmailVerified {
			return false
		}
		u.VerificationToken = &token
		u.VerificationTokenExpires = &expires
		return true
	})
}

func (r *memUsers) MarkEmailVerified(ctx context.Context, id uuid.UUID, tokenDigest *string) error {
	return r.update(id, func(u *models.User) bool {
		u.EmailVerified = true
		u.VerificationToken = nil
		u.VerificationTokenExpires = nil
		u.VerifiedTokenDigest = tokenDigest
		return true
	})
}

func (r *memUsers) SetPremiumByEmail(ctx context.Context, email string) error {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return r.update(u.ID, func(u *models.User) bool {
		u.IsPremium = true
		return true
	})
}

// ---- playlists ----

type memPlaylists struct{ s *MemoryStore }

func (r *memPlaylists) Create(ctx context.Context, p *models.Playlist) error {
	defer r.s.lock()()
	if _, ok := r.s.data.users[p.UserID]; !ok {
		return repository.ErrNotFound
	}
	r.s.data.playlists[p.ID] = *p
	return nil
}

func (r *memPlaylists) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Playlist, error) {
	defer r.s.lock()()
	out := make([]models.Playlist, 0)
	for _, p := range r.s.data.playlists {
		if p.UserID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memPlaylists) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Playlist, error) {
	defer r.s.lock()()
	p, ok := r.s.data.playlists[id]
	if !ok || p.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memPlaylists) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	defer r.s.lock()()
	p, ok := r.s.data.playlists[id]
	if !ok || p.UserID != ownerID {
		return repository.ErrNotFound
	}
	for songID, song := range r.s.data.songs {
		if song.PlaylistID == id {
			delete(r.s.data.songs, songID)
		}
	}
	delete(r.s.data.playlists, id)
	return nil
}

func (r *memPlaylists) AddSong(ctx context.Context, s *models.PlaylistSong) (bool, error) {
	defer r.s.lock()()
	if _, ok := r.s.data.playlists[s.PlaylistID]; !ok {
		return false, repository.ErrNotFound
	}
	for _, existing := range r.s.data.songs {
		if existing.PlaylistID == s.PlaylistID && existing.SongID == s.SongID {
			*s = existing
			return false, nil
		}
	}
	r.s.data.songs[s.ID] = *s
	return true, nil
}

func (r *memPlaylists) ListSongs(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistSong, error) {
	defer r.s.lock()()
	out := make([]models.PlaylistSong, 0)
	for _, s := range r.s.data.songs {
		if s.PlaylistID == playlistID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out, nil
}

func (r *memPlaylists) RemoveSong(ctx context.Context, playlistID, entryID uuid.UUID) error {
	defer r.s.lock()()
	s, ok := r.s.data.songs[entryID]
	if !ok || s.PlaylistID != playlistID {
		return repository.ErrNotFound
	}
	delete(r.s.data.songs, entryID)
	return nil
}
