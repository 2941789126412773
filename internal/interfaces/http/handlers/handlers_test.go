package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/interfaces/http/middleware"
)

var (
	testUser  = entities.Actor{ID: uuid.MustParse("018f0000-0000-7000-8000-000000000001"), Role: entities.UserRoleUser}
	testAdmin = entities.Actor{ID: uuid.MustParse("018f0000-0000-7000-8000-000000000099"), Role: entities.UserRoleAdmin}
)

// newRouter mounts handlers behind a middleware that injects actor when set.
func newRouter(actor *entities.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ActorKey, *actor)
		}
		c.Next()
	})
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
