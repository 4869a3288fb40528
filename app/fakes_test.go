package app

import (
	"context"
	"sync"

	"remarket/pkg/events"
	"remarket/pkg/storage"
)

var _ Repository = (*fakeRepository)(nil)

// fakeStore keeps saved files in memory.
type fakeStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (s *fakeStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = data
	return "/uploads/product_images/" + filename, nil
}

func (s *fakeStore) Delete(ctx context.Context, filename string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[filename]; !ok {
		return false, nil
	}
	delete(s.files, filename)
	return true, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

var _ storage.ImageStore = (*fakeStore)(nil)

// fakePublisher records every published event.
type fakePublisher struct {
	mu        sync.Mutex
	published []*events.Event
}

func (p *fakePublisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) eventNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.published))
	for _, e := range p.published {
		names = append(names, e.Event)
	}
	return names
}

var _ events.Publisher = (*fakePublisher)(nil)

// authedContext builds a request context carrying the authenticated user.
func authedContext(userID string) context.Context {
	return context.WithValue(context.Background(), "UserID", userID)
}
