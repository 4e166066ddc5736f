// AngelaMos | 2026
// dto_test.go

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListUsersParams_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative page", -3, 25, 1, 25},
		{"oversized page size clamped", 2, 500, 2, 100},
		{"valid values kept", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := ListUsersParams{Page: tt.page, PageSize: tt.size}
			p.Normalize()

			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestListUsersParams_Offset(t *testing.T) {
	t.Parallel()

	p := ListUsersParams{Page: 3, PageSize: 10}
	assert.Equal(t, 20, p.Offset())
}

func TestToUserResponse_OmitsCredentials(t *testing.T) {
	t.Parallel()

	token := "aaaa"
	u := &User{
		ID:                     "u1",
		Email:                  "jane@example.com",
		PasswordHash:           "$argon2id$secret",
		FirstName:              "Jane",
		LastName:               "Doe",
		Role:                   RoleUser,
		EmailVerificationToken: &token,
	}

	resp := ToUserResponse(u)

	assert.Equal(t, "u1", resp.ID)
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.Equal(t, "Jane", resp.FirstName)
}

func TestUser_FullName(t *testing.T) {
	t.Parallel()

	u := &User{FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, "Jane Doe", u.FullName())
}
