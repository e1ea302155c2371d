package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"animehub/internal/api/models"
	"animehub/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// stubAuthService accepts exactly one token and rejects everything else.
type stubAuthService struct {
	token  string
	claims *service.Claims
}

func (s *stubAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	if tokenString == s.token {
		return s.claims, nil
	}
	return nil, errors.New("invalid token")
}

func (s *stubAuthService) Register(ctx context.Context, email, password, username string) (string, string, *models.User, error) {
	return "", "", nil, errors.New("not implemented")
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, string, *models.User, error) {
	return "", "", nil, errors.New("not implemented")
}

func (s *stubAuthService) LoginWithGoogle(ctx context.Context, rawIDToken string) (string, string, *models.User, error) {
	return "", "", nil, errors.New("not implemented")
}

func (s *stubAuthService) RefreshAccessToken(refreshToken string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubAuthService) RevokeToken(refreshToken string) error {
	return errors.New("not implemented")
}

func authTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID")})
	})
	return r
}

func probe(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	svc := &stubAuthService{token: "good", claims: &service.Claims{UserID: "user-1", Username: "alice"}}
	r := authTestRouter(AuthMiddleware(svc))

	w := probe(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")

	assert.Equal(t, http.StatusUnauthorized, probe(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer bad").Code)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "NotBearer good").Code)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer").Code)
}

func TestOptionalAuth(t *testing.T) {
	svc := &stubAuthService{token: "good", claims: &service.Claims{UserID: "user-1", Username: "alice"}}
	r := authTestRouter(OptionalAuth(svc))

	w := probe(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")

	// anonymous and bad tokens both pass through without an identity
	w = probe(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "user-1")

	w = probe(r, "Bearer bad")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "user-1")
}
