package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/peerev/peer-review-api/internal/models"
)

func performWithUser(t *testing.T, user *models.User, roles ...models.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/secure", func(c *gin.Context) {
		if user != nil {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}, RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secure", nil))
	return rec
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	rec := performWithUser(t, &models.User{ID: "u1", Role: models.RoleInstructor}, models.RoleInstructor, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesRejectsStudent(t *testing.T) {
	rec := performWithUser(t, &models.User{ID: "u1", Role: models.RoleStudent}, models.RoleInstructor, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesRejectsMissingUser(t *testing.T) {
	rec := performWithUser(t, nil, models.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
