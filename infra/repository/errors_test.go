package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/monegment/monegment/pkg/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()
	storage := errors.New("connection refused")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "not found", in: gorm.ErrRecordNotFound, want: domain.ErrNotFound},
		{name: "wrapped not found", in: fmt.Errorf("get: %w", gorm.ErrRecordNotFound), want: domain.ErrNotFound},
		{name: "duplicate", in: gorm.ErrDuplicatedKey, want: domain.ErrAlreadyExists},
		{name: "storage failure passes through", in: storage, want: storage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapGormErrorToDomain(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
	assert.NotErrorIs(t, MapGormErrorToDomain(storage), domain.ErrInsufficientFunds)
}
