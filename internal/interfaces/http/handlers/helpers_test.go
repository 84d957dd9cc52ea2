package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/interfaces/http/middleware"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func asAccount(id uuid.UUID, role entities.AccountRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AccountIDKey, id)
		c.Set(middleware.AccountRoleKey, role)
		c.Next()
	}
}

func doRequest(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, code, decodeBody(t, w)["code"])
}

func TestActorFrom_Unauthenticated(t *testing.T) {
	r := newTestRouter()
	r.GET("/x", func(c *gin.Context) {
		if _, ok := actorFrom(c); ok {
			c.Status(http.StatusOK)
		}
	})

	w := doRequest(r, http.MethodGet, "/x", "")
	assertErrorCode(t, w, http.StatusUnauthorized, domainerrors.CodeUnauthorized)
}

func TestPageParams_Defaults(t *testing.T) {
	r := newTestRouter()
	var got []int
	r.GET("/x", func(c *gin.Context) {
		p := pageParams(c)
		got = []int{p.Page, p.Limit}
		c.Status(http.StatusOK)
	})

	doRequest(r, http.MethodGet, "/x", "")
	assert.Equal(t, []int{1, 20}, got)

	doRequest(r, http.MethodGet, "/x?page=0&limit=500", "")
	assert.Equal(t, []int{1, 100}, got)

	doRequest(r, http.MethodGet, "/x?page=3&limit=5", "")
	assert.Equal(t, []int{3, 5}, got)
}

func TestEnumQuery(t *testing.T) {
	r := newTestRouter()
	r.GET("/x", func(c *gin.Context) {
		status, ok := enumQuery(c, "status", tontineStatuses...)
		if !ok {
			return
		}
		c.String(http.StatusOK, string(status))
	})

	w := doRequest(r, http.MethodGet, "/x?status=ACTIVE", "")
	assert.Equal(t, "ACTIVE", w.Body.String())

	w = doRequest(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = doRequest(r, http.MethodGet, "/x?status=active", "")
	assertErrorCode(t, w, http.StatusBadRequest, domainerrors.CodeValidation)
}

func fmtBody(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
