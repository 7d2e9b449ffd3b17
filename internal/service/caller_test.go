package service

import (
	"testing"

	"unilearn_backend/internal/model"
	"unilearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestCallerFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims *util.Claims
		want   Caller
	}{
		{name: "no token", claims: nil, want: Anonymous()},
		{name: "student", claims: &util.Claims{UserID: 3, Role: model.RoleStudent, Email: "s@example.com"}, want: Caller{Kind: CallerStudent, UserID: 3, Email: "s@example.com"}},
		{name: "teacher", claims: &util.Claims{UserID: 4, Role: model.RoleTeacher}, want: Caller{Kind: CallerTeacher, UserID: 4}},
		{name: "admin sees the anonymous view", claims: &util.Claims{UserID: 5, Role: model.RoleAdmin}, want: Anonymous()},
		{name: "unknown role", claims: &util.Claims{UserID: 6, Role: "guest"}, want: Anonymous()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CallerFromClaims(tt.claims))
		})
	}
}
