package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyCompleted, http.StatusUnprocessableEntity},
		{ErrCodeTerminalStatus, http.StatusUnprocessableEntity},
		{ErrCodeIntegrityViolation, http.StatusUnprocessableEntity},
		{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, GetHTTPStatus(tt.code), tt.code)
	}
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]int{1, 2, 3}, 2, 3, 7)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, int64(7), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestListRequestOffsetAndLimit(t *testing.T) {
	r := ListRequest{Page: 3, PageSize: 25}
	assert.Equal(t, 50, r.Offset())
	assert.Equal(t, 25, r.Limit())

	r = ListRequest{}
	assert.Equal(t, 0, r.Offset())
	assert.Equal(t, 20, r.Limit())

	r = ListRequest{Page: 1, PageSize: 500}
	assert.Equal(t, 100, r.Limit())
}
