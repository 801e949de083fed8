package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_Validation(t *testing.T) {
	exp := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		user    User
		perms   []Permission
		wantErr string
	}{
		{
			name:  "valid",
			user:  User{Email: "a@example.com"},
			perms: []Permission{{TeamID: "t1", Role: RoleAdmin}, {TeamID: "t2", Role: RoleMember}},
		},
		{name: "no permissions", user: User{Email: "a@example.com"}},
		{name: "missing email", user: User{}, wantErr: "email"},
		{
			name:    "bad role",
			user:    User{Email: "a@example.com"},
			perms:   []Permission{{TeamID: "t1", Role: "OWNER"}},
			wantErr: "invalid role",
		},
		{
			name:    "duplicate team",
			user:    User{Email: "a@example.com"},
			perms:   []Permission{{TeamID: "t1", Role: RoleAdmin}, {TeamID: "t1", Role: RoleMember}},
			wantErr: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := NewSession(tt.user, tt.perms, exp)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSession)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, sess.Permissions)
			assert.Equal(t, exp.Unix(), sess.ExpiresAt)
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Grace Hopper", User{FirstName: "Grace", LastName: "Hopper", Email: "g@example.com"}.DisplayName())
	assert.Equal(t, "g@example.com", User{Email: "g@example.com"}.DisplayName())
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	sess := &Session{ExpiresAt: now.Add(time.Minute).Unix()}
	assert.False(t, sess.Expired(now))
	assert.True(t, sess.Expired(now.Add(2*time.Minute)))
}
