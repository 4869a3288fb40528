package app

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"remarket/domain"
)

// fakeRepository is an in-memory Repository used by the handler tests. It
// mirrors the transactional image rules: first image of a product becomes
// primary, inserts past the cap fail atomically, and deleting the primary
// promotes the earliest remaining image.
type fakeRepository struct {
	mu          sync.Mutex
	users       map[string]domain.User
	categories  map[string]domain.Category
	communities map[string]domain.Community
	members     map[string]map[string]bool
	products    map[string]domain.Product
	images      map[string][]domain.ProductImage
	now         time.Time
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:       make(map[string]domain.User),
		categories:  make(map[string]domain.Category),
		communities: make(map[string]domain.Community),
		members:     make(map[string]map[string]bool),
		products:    make(map[string]domain.Product),
		images:      make(map[string][]domain.ProductImage),
		now:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so created_at ordering is
// deterministic.
func (f *fakeRepository) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeRepository) addProduct(id, sellerID string) domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := domain.Product{ID: id, SellerID: sellerID, Title: "Product " + id, Condition: domain.ConditionGood}
	f.products[id] = p
	return p
}

func (f *fakeRepository) Close() error { return nil }

func (f *fakeRepository) CreateUser(ctx context.Context, username, email, passwordHash, fullName, location string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Location:     location,
		MemberSince:  f.tick(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeRepository) GetUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].MemberSince.Before(all[j].MemberSince) })
	return paginate(all, limit, offset), nil
}

func (f *fakeRepository) CountUsers(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

func (f *fakeRepository) GetUser(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return domain.User{}, sql.ErrNoRows
}

func (f *fakeRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, sql.ErrNoRows
}

func (f *fakeRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, sql.ErrNoRows
}

func (f *fakeRepository) CreateCategory(ctx context.Context, name, icon string) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	category := domain.Category{ID: uuid.NewString(), Name: name, Icon: icon}
	f.categories[category.ID] = category
	return category, nil
}

func (f *fakeRepository) GetCategories(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Category, 0, len(f.categories))
	for _, c := range f.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, limit, offset), nil
}

func (f *fakeRepository) CountCategories(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.categories), nil
}

func (f *fakeRepository) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return domain.Category{}, sql.ErrNoRows
}

func (f *fakeRepository) CreateCommunity(ctx context.Context, name, description, location string) (domain.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	community := domain.Community{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Location:    location,
		CreatedAt:   f.tick(),
	}
	f.communities[community.ID] = community
	return community, nil
}

func (f *fakeRepository) GetCommunities(ctx context.Context, limit, offset int) ([]domain.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Community, 0, len(f.communities))
	for _, c := range f.communities {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func (f *fakeRepository) CountCommunities(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.communities), nil
}

func (f *fakeRepository) GetCommunityByID(ctx context.Context, id string) (domain.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.communities[id]; ok {
		return c, nil
	}
	return domain.Community{}, sql.ErrNoRows
}

func (f *fakeRepository) JoinCommunity(ctx context.Context, communityID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[communityID] == nil {
		f.members[communityID] = make(map[string]bool)
	}
	f.members[communityID][userID] = true
	return nil
}

func (f *fakeRepository) LeaveCommunity(ctx context.Context, communityID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[communityID], userID)
	return nil
}

func (f *fakeRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return domain.Product{}, sql.ErrNoRows
}

func (f *fakeRepository) GetProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	images := make([]domain.ProductImage, len(f.images[productID]))
	copy(images, f.images[productID])
	return images, nil
}

func (f *fakeRepository) GetProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, img := range f.images[productID] {
		if img.ID == imageID {
			return img, nil
		}
	}
	return domain.ProductImage{}, sql.ErrNoRows
}

func (f *fakeRepository) CountProductImages(ctx context.Context, productID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.images[productID]), nil
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

func (f *fakeRepository) DeleteProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	images := f.images[productID]
	idx := -1
	for i, img := range images {
		if img.ID == imageID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.ProductImage{}, sql.ErrNoRows
	}

	deleted := images[idx]
	remaining := append(append([]domain.ProductImage{}, images[:idx]...), images[idx+1:]...)

	if deleted.IsPrimary && len(remaining) > 0 {
		earliest := 0
		for i := range remaining {
			if remaining[i].CreatedAt.Before(remaining[earliest].CreatedAt) ||
				(remaining[i].CreatedAt.Equal(remaining[earliest].CreatedAt) && remaining[i].ID < remaining[earliest].ID) {
				earliest = i
			}
		}
		remaining[earliest].IsPrimary = true
	}

	f.images[productID] = remaining
	return deleted, nil
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
