package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is a signed-in browser session. The cookie carries only the ID;
// Payload holds the JSON-encoded identity and permission set resolved at
// sign-in.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID        string    `bun:"id,pk"`
	Email     string    `bun:"email,notnull"`
	Payload   string    `bun:"payload,notnull,type:text"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
