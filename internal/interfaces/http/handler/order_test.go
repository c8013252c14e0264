package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPlaceOrderRejectsEmptyLines(t *testing.T) {
	h := NewOrderHandler(nil, nil, zap.NewNop())
	r, _ := withTenant(h.PlaceOrder)

	body := `{"supplier_id":"` + newUUIDString() + `","receiver_id":"` + newUUIDString() + `","store_point_id":"` + newUUIDString() + `","lines":[]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestPlaceOrderRejectsMissingTenant(t *testing.T) {
	h := NewOrderHandler(nil, nil, zap.NewNop())
	r := gin.New()
	r.POST("/orders", h.PlaceOrder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_TENANT")
}

func TestTransitionRejectsMissingStatus(t *testing.T) {
	h := NewOrderHandler(nil, nil, zap.NewNop())
	r, _ := withTenant(h.Transition)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x/"+newUUIDString(), strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteOrderRejectsBadID(t *testing.T) {
	h := NewOrderHandler(nil, nil, zap.NewNop())
	r, _ := withTenant(h.CompleteOrder)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x/garbage", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
