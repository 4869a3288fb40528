package domain

import "time"

type Community struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Location    string    `json:"location" db:"location"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// UserCommunity is a row of the user_community membership table.
type UserCommunity struct {
	UserID      string `json:"user_id" db:"user_id"`
	CommunityID string `json:"community_id" db:"community_id"`
}

// ProductCommunity is a row of the product_community association table.
type ProductCommunity struct {
	ProductID   string `json:"product_id" db:"product_id"`
	CommunityID string `json:"community_id" db:"community_id"`
}
