package product

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"remarket/domain"
	"remarket/pkg/events"
	"remarket/pkg/storage"
)

// fakeRepository backs the handler tests with in-memory state.
type fakeRepository struct {
	mu          sync.Mutex
	categories  map[string]domain.Category
	products    map[string]domain.Product
	images      map[string][]domain.ProductImage
	communities map[string][]string
	members     map[string]map[string]bool
	now         time.Time
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		categories:  make(map[string]domain.Category),
		products:    make(map[string]domain.Product),
		images:      make(map[string][]domain.ProductImage),
		communities: make(map[string][]string),
		members:     make(map[string]map[string]bool),
		now:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

var _ Repository = (*fakeRepository)(nil)

func (f *fakeRepository) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeRepository) addCategory() domain.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Category{ID: uuid.NewString(), Name: "Misc"}
	f.categories[c.ID] = c
	return c
}

func (f *fakeRepository) Close() error { return nil }

func (f *fakeRepository) matches(p domain.Product, filter Filter) bool {
	if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
		return false
	}
	if filter.CommunityID != nil {
		for _, id := range f.communities[p.ID] {
			if id == *filter.CommunityID {
				return true
			}
		}
		return false
	}
	return true
}

func (f *fakeRepository) publicProducts(filter Filter) []domain.Product {
	all := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		if !p.IsSold && f.matches(p, filter) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (f *fakeRepository) GetProducts(ctx context.Context, filter Filter, limit, offset int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slicePage(f.publicProducts(filter), limit, offset), nil
}

func (f *fakeRepository) CountProducts(ctx context.Context, filter Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.publicProducts(filter)), nil
}

func (f *fakeRepository) userProducts(userID string, sold *bool) []domain.Product {
	all := make([]domain.Product, 0)
	for _, p := range f.products {
		if p.SellerID != userID {
			continue
		}
		if sold != nil && p.IsSold != *sold {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (f *fakeRepository) GetUserProducts(ctx context.Context, userID string, sold *bool, limit, offset int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slicePage(f.userProducts(userID, sold), limit, offset), nil
}

func (f *fakeRepository) CountUserProducts(ctx context.Context, userID string, sold *bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.userProducts(userID, sold)), nil
}

func (f *fakeRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return domain.Product{}, sql.ErrNoRows
}

func (f *fakeRepository) GetUserProduct(ctx context.Context, id string, userID string) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok && p.SellerID == userID {
		return p, nil
	}
	return domain.Product{}, sql.ErrNoRows
}

func (f *fakeRepository) Create(ctx context.Context, req *CreateProductRequest) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.Product{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Condition:       req.Condition,
		Location:        req.Location,
		PreferredMeetup: req.PreferredMeetup,
		SellerID:        req.SellerID,
		CategoryID:      req.CategoryID,
		CreatedAt:       f.tick(),
	}
	p.UpdatedAt = p.CreatedAt
	f.products[p.ID] = p
	f.communities[p.ID] = append([]string{}, req.CommunityIDs...)
	return p, nil
}

func (f *fakeRepository) Update(ctx context.Context, p domain.Product, userID string) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.products[p.ID]
	if !ok || existing.SellerID != userID {
		return domain.Product{}, sql.ErrNoRows
	}
	p.UpdatedAt = f.tick()
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeRepository) SetSold(ctx context.Context, id, userID string, sold bool) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.SellerID != userID {
		return domain.Product{}, sql.ErrNoRows
	}
	p.IsSold = sold
	p.UpdatedAt = f.tick()
	f.products[id] = p
	return p, nil
}

func (f *fakeRepository) DeleteProduct(ctx context.Context, id string, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.SellerID != userID {
		return nil, sql.ErrNoRows
	}
	urls := make([]string, 0, len(f.images[id]))
	for _, img := range f.images[id] {
		urls = append(urls, img.URL)
	}
	delete(f.products, id)
	delete(f.images, id)
	delete(f.communities, id)
	return urls, nil
}

func (f *fakeRepository) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return domain.Category{}, sql.ErrNoRows
}

func (f *fakeRepository) GetProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	images := make([]domain.ProductImage, len(f.images[productID]))
	copy(images, f.images[productID])
	return images, nil
}

func (f *fakeRepository) InsertProductImages(ctx context.Context, productID string, urls []string) ([]domain.ProductImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[productID]; !ok {
		return nil, sql.ErrNoRows
	}
	existing := f.images[productID]
	if len(existing)+len(urls) > domain.MaxProductImages {
		return nil, domain.ErrImageLimit
	}
	inserted := make([]domain.ProductImage, 0, len(urls))
	for i, url := range urls {
		img := domain.ProductImage{
			ID:        uuid.NewString(),
			ProductID: productID,
			URL:       url,
			IsPrimary: len(existing) == 0 && i == 0,
			CreatedAt: f.tick(),
		}
		f.images[productID] = append(f.images[productID], img)
		inserted = append(inserted, img)
	}
	return inserted, nil
}

func (f *fakeRepository) GetProductCommunityIDs(ctx context.Context, productID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.communities[productID]...), nil
}

func slicePage[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// fakeStore keeps deleted filenames for assertions.
type fakeStore struct {
	mu      sync.Mutex
	deleted []string
}

func (s *fakeStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	return "/uploads/product_images/" + filename, nil
}

func (s *fakeStore) Delete(ctx context.Context, filename string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, filename)
	return true, nil
}

var _ storage.ImageStore = (*fakeStore)(nil)

// fakePublisher records published events.
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

var _ events.Publisher = (*fakePublisher)(nil)

func authedContext(userID string) context.Context {
	return context.WithValue(context.Background(), "UserID", userID)
}
