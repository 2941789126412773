package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/pkg/jwt"
)

type verifierStub struct {
	claims *jwt.Claims
	err    error
}

func (v verifierStub) Verify(string) (*jwt.Claims, error) {
	return v.claims, v.err
}

func authRouter(verifier TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(verifier)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	r.GET("/x", handlers...)
	return r
}

func doGet(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(AuthorizationHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		verifier verifierStub
		message  string
	}{
		{name: "missing header", message: "Authorization header is required"},
		{name: "wrong scheme", header: "Basic abc", message: "Invalid authorization format"},
		{name: "expired", header: "Bearer t", verifier: verifierStub{err: jwt.ErrExpiredToken}, message: "Token has expired"},
		{name: "invalid", header: "Bearer t", verifier: verifierStub{err: errors.New("bad sig")}, message: "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(authRouter(tc.verifier), tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			assert.Contains(t, w.Body.String(), tc.message)
		})
	}
}

func TestAuthMiddleware_SetsActor(t *testing.T) {
	id := uuid.New()
	w := doGet(authRouter(verifierStub{claims: &jwt.Claims{UserID: id, Role: jwt.RoleUser}}), "Bearer t")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.Contains(t, w.Body.String(), `"role":"user"`)
}

func TestAuthMiddleware_WithRealIssuer(t *testing.T) {
	issuer := jwt.NewIssuer("secret", "cardswap", time.Hour)
	id := uuid.New()
	token, err := issuer.Issue(id, jwt.RoleAdmin)
	require.NoError(t, err)

	w := doGet(authRouter(issuer, RequireAdmin()), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestRequireAdmin(t *testing.T) {
	user := verifierStub{claims: &jwt.Claims{UserID: uuid.New(), Role: jwt.RoleUser}}
	w := doGet(authRouter(user, RequireAdmin()), "Bearer t")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	w = doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetActor_WrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ActorKey, "not-an-actor")
	_, ok := GetActor(c)
	assert.False(t, ok)

	c.Set(ActorKey, entities.Actor{ID: uuid.New()})
	_, ok = GetActor(c)
	assert.True(t, ok)
}
