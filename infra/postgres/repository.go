package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"remarket/app"
	"remarket/app/product"
	"remarket/domain"

	_ "github.com/lib/pq"
)

type PgRepository struct {
	db *sqlx.DB
}

func NewPgRepository(host, database, user, password, port string) *PgRepository {
	db := sqlx.MustConnect("postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, database,
	))

	// Connection pool configuration
	// With 3 replicas × 15 conns = 45 total connections (safer for default PG max_connections=100)
	db.SetMaxOpenConns(15)                 // Max concurrent DB connections per instance
	db.SetMaxIdleConns(8)                  // Keep 8 idle connections in pool
	db.SetConnMaxLifetime(5 * time.Minute) // Recycle connections every 5 min
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections after 2 min

	return &PgRepository{db: db}
}

func (r *PgRepository) Close() error {
	return r.db.Close()
}

// GetPoolStats returns current connection pool statistics
func (r *PgRepository) GetPoolStats() map[string]interface{} {
	stats := r.db.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

// --- users ---

func (r *PgRepository) CreateUser(ctx context.Context, username, email, passwordHash, fullName, location string) (domain.User, error) {
	var u domain.User
	query := `
		INSERT INTO users (username, email, password_hash, full_name, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`

	err := r.db.GetContext(ctx, &u, query, username, email, passwordHash, fullName, location)
	return u, err
}

func (r *PgRepository) GetUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users := make([]domain.User, 0)
	query := `SELECT * FROM users ORDER BY member_since DESC LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &users, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *PgRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func (r *PgRepository) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	return u, err
}

func (r *PgRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE username = $1`, username)
	return u, err
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1`, email)
	return u, err
}

// --- categories ---

func (r *PgRepository) CreateCategory(ctx context.Context, name, icon string) (domain.Category, error) {
	var c domain.Category
	query := `INSERT INTO categories (name, icon) VALUES ($1, $2) RETURNING *`
	err := r.db.GetContext(ctx, &c, query, name, icon)
	return c, err
}

func (r *PgRepository) GetCategories(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)
	query := `SELECT * FROM categories ORDER BY name LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &categories, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *PgRepository) CountCategories(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories`)
	return count, err
}

func (r *PgRepository) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id)
	return c, err
}

// --- communities ---

func (r *PgRepository) CreateCommunity(ctx context.Context, name, description, location string) (domain.Community, error) {
	var c domain.Community
	query := `INSERT INTO communities (name, description, location) VALUES ($1, $2, $3) RETURNING *`
	err := r.db.GetContext(ctx, &c, query, name, description, location)
	return c, err
}

func (r *PgRepository) GetCommunities(ctx context.Context, limit, offset int) ([]domain.Community, error) {
	communities := make([]domain.Community, 0)
	query := `SELECT * FROM communities ORDER BY name LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &communities, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return communities, nil
}

func (r *PgRepository) CountCommunities(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM communities`)
	return count, err
}

func (r *PgRepository) GetCommunityByID(ctx context.Context, id string) (domain.Community, error) {
	var c domain.Community
	err := r.db.GetContext(ctx, &c, `SELECT * FROM communities WHERE id = $1`, id)
	return c, err
}

func (r *PgRepository) JoinCommunity(ctx context.Context, communityID, userID string) error {
	query := `
		INSERT INTO user_community (user_id, community_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, userID, communityID)
	return err
}

func (r *PgRepository) LeaveCommunity(ctx context.Context, communityID, userID string) error {
	query := `DELETE FROM user_community WHERE user_id = $1 AND community_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, communityID)
	return err
}

// --- products ---

func (r *PgRepository) Create(ctx context.Context, req *product.CreateProductRequest) (domain.Product, error) {
	var p domain.Product

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return p, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (
			title, description, price, condition,
			location, preferred_meetup, seller_id, category_id
		) VALUES (
			:title, :description, :price, :condition,
			:location, :preferred_meetup, :seller_id, :category_id
		) RETURNING *`

	rows, err := tx.NamedQuery(query, req)
	if err != nil {
		return p, err
	}

	if rows.Next() {
		err = rows.StructScan(&p)
	}
	rows.Close()
	if err != nil {
		return p, err
	}

	for _, communityID := range req.CommunityIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO product_community (product_id, community_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			p.ID, communityID,
		)
		if err != nil {
			return p, err
		}
	}

	return p, tx.Commit()
}

func (r *PgRepository) GetProducts(ctx context.Context, filter product.Filter, limit, offset int) ([]domain.Product, error) {
	products := make([]domain.Product, 0)

	query := `SELECT p.* FROM products p`
	args := []interface{}{}

	if filter.CommunityID != nil {
		query += ` JOIN product_community pc ON pc.product_id = p.id AND pc.community_id = $1`
		args = append(args, *filter.CommunityID)
	}
	query += ` WHERE p.is_sold = FALSE`
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND p.category_id = $%d`, len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	err := r.db.SelectContext(ctx, &products, query, args...)
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *PgRepository) CountProducts(ctx context.Context, filter product.Filter) (int, error) {
	query := `SELECT COUNT(*) FROM products p`
	args := []interface{}{}

	if filter.CommunityID != nil {
		query += ` JOIN product_community pc ON pc.product_id = p.id AND pc.community_id = $1`
		args = append(args, *filter.CommunityID)
	}
	query += ` WHERE p.is_sold = FALSE`
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND p.category_id = $%d`, len(args))
	}

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	return count, err
}

func (r *PgRepository) GetUserProducts(ctx context.Context, userID string, sold *bool, limit, offset int) ([]domain.Product, error) {
	products := make([]domain.Product, 0)

	query := `SELECT * FROM products WHERE seller_id = $1`
	args := []interface{}{userID}

	if sold != nil {
		args = append(args, *sold)
		query += fmt.Sprintf(` AND is_sold = $%d`, len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	err := r.db.SelectContext(ctx, &products, query, args...)
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *PgRepository) CountUserProducts(ctx context.Context, userID string, sold *bool) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE seller_id = $1`
	args := []interface{}{userID}

	if sold != nil {
		args = append(args, *sold)
		query += fmt.Sprintf(` AND is_sold = $%d`, len(args))
	}

	var count int
	err := r.db.GetContext(ctx, &count, query, args...)
	return count, err
}

func (r *PgRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	return p, err
}

func (r *PgRepository) GetUserProduct(ctx context.Context, id string, userID string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1 AND seller_id = $2`, id, userID)
	return p, err
}

// Update writes the full row back and returns it as stored, so callers see
// the database-assigned updated_at rather than the value they sent in.
func (r *PgRepository) Update(ctx context.Context, p domain.Product, userID string) (domain.Product, error) {
	query := `
        UPDATE products SET
            title = :title,
            description = :description,
            price = :price,
            condition = :condition,
            location = :location,
            preferred_meetup = :preferred_meetup,
            category_id = :category_id,
            is_sold = :is_sold,
            updated_at = now()
        WHERE id = :id AND seller_id = :seller_id_filter
        RETURNING *
    `

	params := map[string]interface{}{
		"id":               p.ID,
		"title":            p.Title,
		"description":      p.Description,
		"price":            p.Price,
		"condition":        p.Condition,
		"location":         p.Location,
		"preferred_meetup": p.PreferredMeetup,
		"category_id":      p.CategoryID,
		"is_sold":          p.IsSold,
		"seller_id_filter": userID,
	}

	var updated domain.Product
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return updated, err
	}
	defer rows.Close()

	if !rows.Next() {
		return updated, sql.ErrNoRows
	}
	if err := rows.StructScan(&updated); err != nil {
		return updated, err
	}

	return updated, rows.Err()
}

func (r *PgRepository) SetSold(ctx context.Context, id, userID string, sold bool) (domain.Product, error) {
	var p domain.Product
	query := `
		UPDATE products SET is_sold = $1, updated_at = now()
		WHERE id = $2 AND seller_id = $3
		RETURNING *`

	err := r.db.GetContext(ctx, &p, query, sold, id, userID)
	return p, err
}

// DeleteProduct removes the product together with its image rows and
// community associations in one transaction, and returns the orphaned image
// URLs so the caller can clean up backing files.
func (r *PgRepository) DeleteProduct(ctx context.Context, id string, userID string) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.GetContext(ctx, &lockedID,
		`SELECT id FROM products WHERE id = $1 AND seller_id = $2 FOR UPDATE`, id, userID)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0)
	err = tx.SelectContext(ctx, &urls, `SELECT url FROM product_images WHERE product_id = $1`, id)
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM product_community WHERE product_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return nil, err
	}

	return urls, tx.Commit()
}

func (r *PgRepository) GetProductCommunityIDs(ctx context.Context, productID string) ([]string, error) {
	ids := make([]string, 0)
	err := r.db.SelectContext(ctx, &ids,
		`SELECT community_id FROM product_community WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// --- product images ---

func (r *PgRepository) GetProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	images := make([]domain.ProductImage, 0)
	query := `SELECT * FROM product_images WHERE product_id = $1 ORDER BY created_at, id`

	err := r.db.SelectContext(ctx, &images, query, productID)
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (r *PgRepository) GetProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error) {
	var img domain.ProductImage
	err := r.db.GetContext(ctx, &img,
		`SELECT * FROM product_images WHERE id = $1 AND product_id = $2`, imageID, productID)
	return img, err
}

func (r *PgRepository) CountProductImages(ctx context.Context, productID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM product_images WHERE product_id = $1`, productID)
	return count, err
}

// InsertProductImages appends a batch of image rows, marking the first of
// the batch primary iff the product had no images before. The product row is
// locked for the duration so concurrent uploads cannot both claim the
// primary slot. The batch is all-or-nothing: pushing the total past
// domain.MaxProductImages rejects it with domain.ErrImageLimit.
func (r *PgRepository) InsertProductImages(ctx context.Context, productID string, urls []string) ([]domain.ProductImage, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.GetContext(ctx, &lockedID, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID)
	if err != nil {
		return nil, err
	}

	var count int
	err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM product_images WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}

	if count+len(urls) > domain.MaxProductImages {
		return nil, domain.ErrImageLimit
	}

	images := make([]domain.ProductImage, 0, len(urls))
	for i, url := range urls {
		var img domain.ProductImage
		err = tx.GetContext(ctx, &img, `
			INSERT INTO product_images (product_id, url, is_primary)
			VALUES ($1, $2, $3)
			RETURNING *`,
			productID, url, count == 0 && i == 0,
		)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, tx.Commit()
}

// DeleteProductImage removes one image row. When the removed image was the
// primary one, the earliest surviving image (by creation time, then id) is
// promoted so the one-primary invariant keeps holding. Returns the deleted
// row for backing-file cleanup.
func (r *PgRepository) DeleteProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error) {
	var img domain.ProductImage

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return img, err
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.GetContext(ctx, &lockedID, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID)
	if err != nil {
		return img, err
	}

	err = tx.GetContext(ctx, &img,
		`SELECT * FROM product_images WHERE id = $1 AND product_id = $2`, imageID, productID)
	if err != nil {
		return img, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1`, imageID); err != nil {
		return img, err
	}

	if img.IsPrimary {
		_, err = tx.ExecContext(ctx, `
			UPDATE product_images SET is_primary = TRUE
			WHERE id = (
				SELECT id FROM product_images
				WHERE product_id = $1
				ORDER BY created_at, id
				LIMIT 1
			)`, productID)
		if err != nil {
			return img, err
		}
	}

	return img, tx.Commit()
}

// assert the repository satisfies the handler-facing interfaces
var (
	_ product.Repository = (*PgRepository)(nil)
	_ app.Repository     = (*PgRepository)(nil)
)
