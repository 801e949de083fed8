package models

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// assignID fills an empty primary key on insert so both dialects get
// the same string UUIDs without relying on gen_random_uuid().
func assignID(query bun.Query, id *string) {
	if _, ok := query.(*bun.InsertQuery); ok && *id == "" {
		*id = uuid.NewString()
	}
}

var (
	_ bun.BeforeAppendModelHook = (*User)(nil)
	_ bun.BeforeAppendModelHook = (*Team)(nil)
	_ bun.BeforeAppendModelHook = (*Application)(nil)
	_ bun.BeforeAppendModelHook = (*TurnoverEntry)(nil)
	_ bun.BeforeAppendModelHook = (*TurnoverFinalization)(nil)
	_ bun.BeforeAppendModelHook = (*ScorecardEntry)(nil)
	_ bun.BeforeAppendModelHook = (*Link)(nil)
	_ bun.BeforeAppendModelHook = (*Session)(nil)
)

func (m *User) BeforeAppendModel(_ context.Context, q bun.Query) error {
	assignID(q, &m.ID)
	return nil
}

func (m *Team) BeforeAppendModel(_ context.Context, q bun.Query) error {
	assignID(q, &m.ID)
	return nil
}

func (m *Application) BeforeAppendModel(_ context.Context, q bun.Query) error {
	assignID(q, &m.ID)
	return nil
}

func (m *TurnoverEntry) BeforeAppendModel(_ context.Context, q bun.Query) error {
	assignID(q, &m.ID)
	return nil
}

func (m *TurnoverFinalization) BeforeAppendModel(_ context.Context, q bun.Query) error {
	assignID(q, &m.ID)
	return nil
}

func (m *ScorecardEntry) BeforeAppendModel(_ context.Context, q bun.Query) error {
	assignID(q, &m.ID)
	return nil
}

func (m *Link) BeforeAppendModel(_ context.Context, q bun.Query) error {
	assignID(q, &m.ID)
	return nil
}

func (m *Session) BeforeAppendModel(_ context.Context, q bun.Query) error {
	assignID(q, &m.ID)
	return nil
}
