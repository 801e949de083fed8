package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Link is an entry of the shared link directory, owned by the team that added it.
type Link struct {
	bun.BaseModel `bun:"table:links,alias:l"`

	ID          string    `bun:"id,pk" json:"id"`
	TeamID      string    `bun:"team_id,notnull" json:"teamId"`
	Title       string    `bun:"title,notnull" json:"title"`
	URL         string    `bun:"url,notnull" json:"url"`
	Description string    `bun:"description" json:"description"`
	Category    string    `bun:"category" json:"category"`
	CreatedBy   string    `bun:"created_by" json:"createdBy"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}
