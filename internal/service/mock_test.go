package service

import (
	"context"
	"fmt"
	"sync"

	"auth_backend/internal/models"
	"auth_backend/internal/repository"
)

// memUsers is an in-memory repository.Users with error injection.
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int

	getByEmailErr error
	getByIDErr    error
	createErr     error
	updateErr     error

	createCalls int
	updateCalls int
}

var _ repository.Users = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateProfilePicture(_ context.Context, id, url string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	u.ProfilePicture = url
	cp := *u
	return &cp, nil
}

func (m *memUsers) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type fakeImages struct {
	url        string
	err        error
	calls      int
	lastUserID string
	lastSource string
}

func (f *fakeImages) Upload(_ context.Context, userID, source string) (string, error) {
	f.calls++
	f.lastUserID = userID
	f.lastSource = source
	return f.url, f.err
}
