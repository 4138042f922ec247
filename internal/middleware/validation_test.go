package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

func newValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewValidationMiddleware(logger.NewNop())
	router := gin.New()
	router.Use(m.ValidateRequestSize(16), m.ValidateContentType("application/json"))
	handler := func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	}
	router.POST("/things", handler)
	router.GET("/things", handler)
	return router
}

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{"json", "application/json", `{}`, http.StatusOK},
		{"json with charset", "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"form", "application/x-www-form-urlencoded", `a=b`, http.StatusUnsupportedMediaType},
		{"missing", "", `{}`, http.StatusUnsupportedMediaType},
		{"empty body", "", ``, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			newValidationRouter().ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestValidateRequestSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`{"a":"0123456789abcdef"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	newValidationRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
