package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EntryType classifies a turnover entry.
type EntryType string

const (
	EntryTypeRFC    EntryType = "RFC"
	EntryTypeINC    EntryType = "INC"
	EntryTypeAlerts EntryType = "ALERTS"
	EntryTypeMIM    EntryType = "MIM"
	EntryTypeComms  EntryType = "COMMS"
	EntryTypeFYI    EntryType = "FYI"
)

// EntryTypes lists every valid entry type in display order.
var EntryTypes = []EntryType{
	EntryTypeRFC,
	EntryTypeINC,
	EntryTypeAlerts,
	EntryTypeMIM,
	EntryTypeComms,
	EntryTypeFYI,
}

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	for _, known := range EntryTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TurnoverEntry is one item of a shift turnover. Entries are editable until
// the team finalizes the turnover; after that FinalizationID is set and the
// entry is frozen.
type TurnoverEntry struct {
	bun.BaseModel `bun:"table:turnover_entries,alias:te"`

	ID             string     `bun:"id,pk" json:"id"`
	TeamID         string     `bun:"team_id,notnull" json:"teamId"`
	ApplicationID  *string    `bun:"application_id" json:"applicationId,omitempty"`
	EntryType      EntryType  `bun:"entry_type,notnull" json:"entryType"`
	Title          string     `bun:"title,notnull" json:"title"`
	Description    string     `bun:"description" json:"description"`
	Ticket         string     `bun:"ticket" json:"ticket,omitempty"`
	Important      bool       `bun:"important,notnull,default:false" json:"important"`
	CreatedBy      string     `bun:"created_by,notnull" json:"createdBy"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
	FinalizationID *string    `bun:"finalization_id" json:"finalizationId,omitempty"`
	FinalizedAt    *time.Time `bun:"finalized_at" json:"finalizedAt,omitempty"`
}

// Finalized reports whether the entry belongs to a finalized turnover.
func (e *TurnoverEntry) Finalized() bool {
	return e.FinalizationID != nil
}

// TurnoverFinalization records one finalize action of a team.
type TurnoverFinalization struct {
	bun.BaseModel `bun:"table:turnover_finalizations,alias:tf"`

	ID          string    `bun:"id,pk" json:"id"`
	TeamID      string    `bun:"team_id,notnull" json:"teamId"`
	FinalizedBy string    `bun:"finalized_by,notnull" json:"finalizedBy"`
	EntryCount  int       `bun:"entry_count,notnull" json:"entryCount"`
	FinalizedAt time.Time `bun:"finalized_at,notnull" json:"finalizedAt"`
}
