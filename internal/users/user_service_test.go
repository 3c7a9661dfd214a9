package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/w0nsdoof/diplomatch/model"
)

func TestDeriveRole(t *testing.T) {
	tests := []struct {
		email string
		want  model.Role
	}{
		{"jane-doe@kbtu.kz", model.RoleDeanOffice},
		{"jane.doe@kbtu.kz", model.RoleSupervisor},
		{"jane_doe@kbtu.kz", model.RoleStudent},
		{"janedoe@kbtu.kz", model.RoleStudent},
		// the dash wins when both separators appear in the local part
		{"jane-doe.smith@kbtu.kz", model.RoleDeanOffice},
		// separators in the domain must not affect the outcome
		{"jane_doe@dean-office.kbtu.kz", model.RoleStudent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveRole(tt.email), "email %q", tt.email)
	}
}
