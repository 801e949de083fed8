package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ScorecardEntry holds the monthly availability and volume of an application.
type ScorecardEntry struct {
	bun.BaseModel `bun:"table:scorecard_entries,alias:se"`

	ID            string    `bun:"id,pk" json:"id"`
	TeamID        string    `bun:"team_id,notnull" json:"teamId"`
	ApplicationID string    `bun:"application_id,notnull,unique:scorecard_period" json:"applicationId"`
	Year          int       `bun:"year,notnull,unique:scorecard_period" json:"year"`
	Month         int       `bun:"month,notnull,unique:scorecard_period" json:"month"`
	Availability  float64   `bun:"availability,notnull" json:"availability"`
	Volume        int64     `bun:"volume,notnull" json:"volume"`
	UpdatedBy     string    `bun:"updated_by" json:"updatedBy"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}
