package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product conditions accepted on create/update.
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

type Product struct {
	ID               string          `db:"id" json:"id"`
	Title            string          `db:"title" json:"title"`
	Description      string          `db:"description" json:"description"`
	Price            decimal.Decimal `db:"price" json:"price"`
	Condition        string          `db:"condition" json:"condition"`
	Location         string          `db:"location" json:"location"`
	PreferredMeetup  *string         `db:"preferred_meetup" json:"preferredMeetup"`
	IsSold           bool            `db:"is_sold" json:"isSold"`
	SellerID         string          `db:"seller_id" json:"sellerID"`
	CategoryID       string          `db:"category_id" json:"categoryID"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}
