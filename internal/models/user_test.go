package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{" Viewer ", RoleViewer, false},
		{"OP", RoleOp, false},
		{"user", RoleUser, false},
		{"root", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownRole)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUserSpecs(t *testing.T) {
	specs, err := ParseUserSpecs("admin:admin, viewer:viewer,,ops:op")
	assert.NoError(t, err)
	assert.Equal(t, []UserSpec{
		{Username: "admin", Role: RoleAdmin},
		{Username: "viewer", Role: RoleViewer},
		{Username: "ops", Role: RoleOp},
	}, specs)

	specs, err = ParseUserSpecs("")
	assert.NoError(t, err)
	assert.Empty(t, specs)

	_, err = ParseUserSpecs("admin")
	assert.Error(t, err)

	_, err = ParseUserSpecs(":admin")
	assert.Error(t, err)

	_, err = ParseUserSpecs("admin:superuser")
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = ParseUserSpecs("admin:admin,admin:viewer")
	assert.Error(t, err)
}
