package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the directory record of someone who signed in through SSO.
// It is informational only; authorization never reads it.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          string    `bun:"id,pk" json:"id"`
	Email       string    `bun:"email,notnull,unique" json:"email"`
	FirstName   string    `bun:"first_name" json:"firstName"`
	LastName    string    `bun:"last_name" json:"lastName"`
	AdsID       string    `bun:"ads_id" json:"adsId"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	LastLoginAt time.Time `bun:"last_login_at,notnull,default:current_timestamp" json:"lastLoginAt"`
}
