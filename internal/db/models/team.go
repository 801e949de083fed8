package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Team is an organizational unit gated by two upstream groups. Holders of
// UserGroup are members, holders of AdminGroup are admins. Group names are
// not unique across teams.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID         string    `bun:"id,pk" json:"id"`
	TeamName   string    `bun:"team_name,notnull,unique" json:"teamName"`
	UserGroup  string    `bun:"user_group,notnull" json:"userGroup"`
	AdminGroup string    `bun:"admin_group,notnull" json:"adminGroup"`
	CreatedBy  string    `bun:"created_by" json:"createdBy"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// Application is a service owned by a team.
type Application struct {
	bun.BaseModel `bun:"table:applications,alias:app"`

	ID          string    `bun:"id,pk" json:"id"`
	TeamID      string    `bun:"team_id,notnull,unique:team_application" json:"teamId"`
	Name        string    `bun:"name,notnull,unique:team_application" json:"name"`
	TLA         string    `bun:"tla" json:"tla"`
	Tier        int       `bun:"tier,notnull,default:3" json:"tier"`
	Description string    `bun:"description" json:"description"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}
