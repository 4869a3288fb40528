package postgres

// schema is applied idempotently at startup. Image byte payloads live
// outside the database; product_images.url records where.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username      VARCHAR(50) NOT NULL UNIQUE,
    email         VARCHAR(100) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    full_name     VARCHAR(100) NOT NULL DEFAULT '',
    location      VARCHAR(100) NOT NULL DEFAULT '',
    rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
    member_since  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS categories (
    id   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(50) NOT NULL UNIQUE,
    icon VARCHAR(50) NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS communities (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name        VARCHAR(100) NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    location    VARCHAR(100) NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
    id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title            VARCHAR(100) NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    price            NUMERIC(12,2) NOT NULL CHECK (price >= 0),
    condition        VARCHAR(50) NOT NULL,
    location         VARCHAR(100) NOT NULL DEFAULT '',
    preferred_meetup VARCHAR(200),
    is_sold          BOOLEAN NOT NULL DEFAULT FALSE,
    seller_id        UUID NOT NULL REFERENCES users(id),
    category_id      UUID NOT NULL REFERENCES categories(id),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_products_seller ON products(seller_id);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC);

CREATE TABLE IF NOT EXISTS product_images (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    url        VARCHAR(255) NOT NULL,
    is_primary BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_product_images_product ON product_images(product_id);

CREATE TABLE IF NOT EXISTS user_community (
    user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    community_id UUID NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
    PRIMARY KEY (user_id, community_id)
);

CREATE TABLE IF NOT EXISTS product_community (
    product_id   UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    community_id UUID NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
    PRIMARY KEY (product_id, community_id)
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func (r *PgRepository) EnsureSchema() error {
	_, err := r.db.Exec(schema)
	return err
}
