// Package pending tracks Telegram users who asked for access and are waiting
// for the administrator to allow them.
package pending

import (
	"fmt"
	"sort"
	"sync"

	"jarvis/internal/auth"
)

// Requests is safe for concurrent use. The repository shares the allowlist
// file format.
type Requests struct {
	mu    sync.Mutex
	repo  auth.Repository
	users map[int64]auth.User
}

// New loads outstanding requests from repo. A nil repo keeps them in memory.
func New(repo auth.Repository) (*Requests, error) {
	r := &Requests{repo: repo, users: make(map[int64]auth.User)}
	if repo == nil {
		return r, nil
	}
	users, err := repo.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load pending requests: %w", err)
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r, nil
}

// Add records a request. It reports false when the user already asked.
func (r *Requests) Add(user auth.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return false, nil
	}
	r.users[user.ID] = user
	if r.repo != nil {
		if err := r.repo.Upsert(user); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Resolve drops the request of userID and returns what the user sent with it.
func (r *Requests) Resolve(userID int64) (auth.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return auth.User{}, false, nil
	}
	delete(r.users, userID)
	if r.repo != nil {
		if err := r.repo.Remove(userID); err != nil {
			return u, true, err
		}
	}
	return u, true, nil
}

// List returns outstanding requests ordered by user ID.
func (r *Requests) List() []auth.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auth.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
