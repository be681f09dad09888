package storefakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dottapps/auth-gateway/internal/errors"
	"github.com/dottapps/auth-gateway/sessionstore"
)

var _ sessionstore.Client = (*FakeStore)(nil)

// FakeStore is an in-memory stand-in for the backend session service.
// Setting Unreachable makes every call fail with ErrStoreUnreachable,
// which lets tests drive the transient-failure paths.
type FakeStore struct {
	lock     sync.Mutex
	sessions map[string]*sessionstore.SessionRecord
	users    map[string]*sessionstore.UserRecord
	subjects map[string]string // OAuth subject -> userID

	Unreachable  bool
	CreateCalls  int
	SessionTTL   time.Duration
	nowFn        func() time.Time
	HeartbeatErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		sessions:   make(map[string]*sessionstore.SessionRecord),
		users:      make(map[string]*sessionstore.UserRecord),
		subjects:   make(map[string]string),
		SessionTTL: 24 * time.Hour,
		nowFn:      time.Now,
	}
}

// AddUser seeds a backend user and links it to an OAuth subject.
func (fs *FakeStore) AddUser(subject string, user sessionstore.UserRecord) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	u := user
	fs.users[user.UserID] = &u
	if subject != "" {
		fs.subjects[subject] = user.UserID
	}
}

func (fs *FakeStore) Create(_ context.Context, userID, tenantID string) (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.Unreachable {
		return "", errors.ErrStoreUnreachable
	}

	fs.CreateCalls++
	now := fs.nowFn()
	sessionID := uuid.NewString()
	fs.sessions[sessionID] = &sessionstore.SessionRecord{
		SessionID:      sessionID,
		UserID:         userID,
		TenantID:       tenantID,
		IssuedAt:       now,
		ExpiresAt:      now.Add(fs.SessionTTL),
		LastActivityAt: now,
	}
	return sessionID, nil
}

func (fs *FakeStore) Validate(_ context.Context, sessionID string) (*sessionstore.SessionRecord, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.Unreachable {
		return nil, errors.ErrStoreUnreachable
	}

	record, ok := fs.sessions[sessionID]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	if record.ExpiresAt.Before(fs.nowFn()) {
		delete(fs.sessions, sessionID)
		return nil, errors.ErrSessionNotFound
	}
	cp := *record
	return &cp, nil
}

func (fs *FakeStore) Delete(_ context.Context, sessionID string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.Unreachable {
		return errors.ErrStoreUnreachable
	}
	delete(fs.sessions, sessionID)
	return nil
}

func (fs *FakeStore) Heartbeat(_ context.Context, sessionID string) (sessionstore.HeartbeatResult, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.Unreachable {
		return sessionstore.HeartbeatResult{}, errors.ErrStoreUnreachable
	}
	if fs.HeartbeatErr != nil {
		return sessionstore.HeartbeatResult{}, fs.HeartbeatErr
	}

	record, ok := fs.sessions[sessionID]
	if !ok {
		return sessionstore.HeartbeatResult{}, errors.ErrSessionNotFound
	}
	record.LastActivityAt = fs.nowFn()
	refresh := time.Until(record.ExpiresAt) < fs.SessionTTL/10
	return sessionstore.HeartbeatResult{RefreshRequired: refresh}, nil
}

func (fs *FakeStore) ResolveUser(_ context.Context, subject, email string) (*sessionstore.UserRecord, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.Unreachable {
		return nil, errors.ErrStoreUnreachable
	}

	if userID, ok := fs.subjects[subject]; ok {
		cp := *fs.users[userID]
		return &cp, nil
	}

	// First sign-in creates a user with onboarding not started.
	user := &sessionstore.UserRecord{
		UserID: fmt.Sprintf("user-%s", uuid.NewString()[:8]),
		Email:  email,
		Onboarding: sessionstore.OnboardingRecord{
			CurrentStep: "not_started",
		},
	}
	fs.users[user.UserID] = user
	fs.subjects[subject] = user.UserID
	cp := *user
	return &cp, nil
}

func (fs *FakeStore) GetUser(_ context.Context, userID string) (*sessionstore.UserRecord, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.Unreachable {
		return nil, errors.ErrStoreUnreachable
	}
	user, ok := fs.users[userID]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (fs *FakeStore) GetOnboarding(_ context.Context, userID string) (*sessionstore.OnboardingRecord, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.Unreachable {
		return nil, errors.ErrStoreUnreachable
	}
	user, ok := fs.users[userID]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	cp := user.Onboarding
	return &cp, nil
}

func (fs *FakeStore) PutOnboarding(_ context.Context, userID string, record sessionstore.OnboardingRecord) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.Unreachable {
		return errors.ErrStoreUnreachable
	}
	user, ok := fs.users[userID]
	if !ok {
		return errors.ErrUserNotFound
	}
	user.Onboarding = record
	if record.TenantID != "" {
		user.TenantID = record.TenantID
	}
	return nil
}
