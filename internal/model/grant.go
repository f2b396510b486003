package model

import (
	"time"
)

// Grant is owned by the grants subsystem; goals only need its region.
type Grant struct {
	ID            int64     `db:"id" json:"id"`
	RegionID      int64     `db:"region_id" json:"regionId"`
	Number        string    `db:"number" json:"number"`
	RecipientName string    `db:"recipient_name" json:"recipientName"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
