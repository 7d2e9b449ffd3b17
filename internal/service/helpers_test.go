package service

import (
	"context"
	"io"
	"sync"
	"testing"

	"unilearn_backend/internal/repository"
	"unilearn_backend/internal/testutil"
	"unilearn_backend/pkg/mail"

	"gorm.io/gorm"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type memoryStorage struct {
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (s *memoryStorage) Put(_ context.Context, filename string, reader io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.objects[filename] = data
	return s.URL(filename), nil
}

func (s *memoryStorage) Remove(_ context.Context, filename string) error {
	delete(s.objects, filename)
	return nil
}

func (s *memoryStorage) URL(filename string) string {
	return "/uploads/" + filename
}

type fixture struct {
	db       *gorm.DB
	store    *repository.Store
	mailer   *recordingMailer
	storage  *memoryStorage
	courses  *CourseService
	content  *CourseContentService
	progress *ProgressService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	mailer := &recordingMailer{}
	storage := newMemoryStorage()
	notifier := NewNotificationService(mailer)

	return &fixture{
		db:       db,
		store:    store,
		mailer:   mailer,
		storage:  storage,
		courses:  NewCourseService(store, nil, notifier),
		content:  NewCourseContentService(store, storage, nil, notifier),
		progress: NewProgressService(store, notifier),
	}
}
