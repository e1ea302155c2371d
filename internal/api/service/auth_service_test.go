package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"animehub/internal/api/models"
	"animehub/internal/config"
	"animehub/internal/middleware/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRefreshTokenRepo struct {
	tokens map[string]*models.RefreshToken // keyed by token string
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeRefreshTokenRepo) Create(t *models.RefreshToken) error {
	cp := *t
	f.tokens[t.Token] = &cp
	return nil
}

func (f *fakeRefreshTokenRepo) FindByToken(tokenString string) (*models.RefreshToken, error) {
	t, ok := f.tokens[tokenString]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRefreshTokenRepo) Revoke(tokenID string) error {
	for _, t := range f.tokens {
		if t.ID == tokenID {
			t.Revoked = true
		}
	}
	return nil
}

func (f *fakeRefreshTokenRepo) Delete(tokenID string) error {
	for key, t := range f.tokens {
		if t.ID == tokenID {
			delete(f.tokens, key)
		}
	}
	return nil
}

// fakeVerifier returns a fixed identity for one accepted token.
type fakeVerifier struct {
	accept   string
	identity GoogleIdentity
}

func (f *fakeVerifier) Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error) {
	if rawIDToken != f.accept {
		return nil, errors.New("bad token")
	}
	id := f.identity
	return &id, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func newTestAuthService(users *fakeUserRepo, tokens *fakeRefreshTokenRepo, google IdentityVerifier) AuthService {
	return NewAuthService(users, tokens, google, testConfig())
}

func TestRegister_CreatesAccountWithEmptyCollections(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), nil)
	ctx := context.Background()

	accessToken, refreshToken, user, err := svc.Register(ctx, "a@x.com", "secret1", "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Favorites)
	assert.Empty(t, user.WatchList.Watching)
	assert.True(t, user.Privacy.ListsPublic)
	assert.NotEqual(t, "secret1", user.Password, "password must be stored hashed")
	require.NoError(t, auth.VerifyPassword(user.Password, "secret1"))

	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterThenAddFavorite(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), nil)
	ctx := context.Background()

	_, _, user, err := svc.Register(ctx, "a@x.com", "secret1", "alice")
	require.NoError(t, err)

	lists := NewListService(users)
	favorites, err := lists.AddFavorite(ctx, user.ID, models.CatalogItem{MalID: 5, Title: "X"})
	require.NoError(t, err)

	require.Len(t, favorites, 1)
	assert.Equal(t, int64(5), favorites[0].MalID)
}

func TestRegister_EmailInUse(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), nil)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "a@x.com", "secret1", "alice")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "a@x.com", "other-pass", "bob")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestRegister_ConcurrentDuplicateHitsUniqueIndex(t *testing.T) {
	// a racing registration can pass the email lookup and fail on the unique
	// index instead; that still surfaces as an email conflict
	users := newFakeUserRepo()
	users.createErr = fmt.Errorf("create account: %w", gorm.ErrDuplicatedKey)
	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), nil)

	_, _, _, err := svc.Register(context.Background(), "a@x.com", "secret1", "alice")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), nil)
	ctx := context.Background()

	_, _, registered, err := svc.Register(ctx, "a@x.com", "secret1", "alice")
	require.NoError(t, err)

	accessToken, _, user, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, accessToken)

	_, _, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_GoogleOnlyAccountHasNoPassword(t *testing.T) {
	users := newFakeUserRepo()
	googleID := "sub-123"
	account := newAccount("g@x.com", "greta")
	account.GoogleID = &googleID
	require.NoError(t, users.Create(context.Background(), account))

	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), nil)

	_, _, _, err := svc.Login(context.Background(), "g@x.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithGoogle_CreatesAccount(t *testing.T) {
	users := newFakeUserRepo()
	verifier := &fakeVerifier{
		accept: "good-token",
		identity: GoogleIdentity{
			Subject: "sub-123",
			Email:   "g@x.com",
			Name:    "greta",
			Picture: "https://lh3.example/greta.png",
		},
	}
	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), verifier)
	ctx := context.Background()

	_, _, user, err := svc.LoginWithGoogle(ctx, "good-token")
	require.NoError(t, err)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "sub-123", *user.GoogleID)
	assert.Equal(t, "g@x.com", user.Email)
	assert.Equal(t, "https://lh3.example/greta.png", user.Avatar)

	// second login finds the same account instead of creating another
	_, _, again, err := svc.LoginWithGoogle(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, users.users, 1)
}

func TestLoginWithGoogle_LinksExistingEmailAccount(t *testing.T) {
	users := newFakeUserRepo()
	verifier := &fakeVerifier{
		accept:   "good-token",
		identity: GoogleIdentity{Subject: "sub-123", Email: "a@x.com", Name: "alice"},
	}
	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), verifier)
	ctx := context.Background()

	_, _, registered, err := svc.Register(ctx, "a@x.com", "secret1", "alice")
	require.NoError(t, err)

	_, _, user, err := svc.LoginWithGoogle(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "sub-123", *user.GoogleID)

	// the link is persisted
	stored, err := users.FindByGoogleID(ctx, "sub-123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, stored.ID)
}

func TestLoginWithGoogle_RejectsBadToken(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeRefreshTokenRepo(), &fakeVerifier{accept: "good-token"})

	_, _, _, err := svc.LoginWithGoogle(context.Background(), "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginWithGoogle_DisabledWithoutVerifier(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeRefreshTokenRepo(), nil)

	_, _, _, err := svc.LoginWithGoogle(context.Background(), "any")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeRefreshTokenRepo()
	svc := newTestAuthService(users, tokens, nil)
	ctx := context.Background()

	_, refreshToken, user, err := svc.Register(ctx, "a@x.com", "secret1", "alice")
	require.NoError(t, err)

	accessToken, err := svc.RefreshAccessToken(refreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.RefreshAccessToken("no-such-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken_ExpiredTokenIsDeleted(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeRefreshTokenRepo()
	svc := newTestAuthService(users, tokens, nil)

	_, refreshToken, _, err := svc.Register(context.Background(), "a@x.com", "secret1", "alice")
	require.NoError(t, err)

	tokens.tokens[refreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.RefreshAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.NotContains(t, tokens.tokens, refreshToken)
}

func TestRevokeToken(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeRefreshTokenRepo()
	svc := newTestAuthService(users, tokens, nil)

	_, refreshToken, _, err := svc.Register(context.Background(), "a@x.com", "secret1", "alice")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(refreshToken))

	_, err = svc.RefreshAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.ErrorIs(t, svc.RevokeToken("no-such-token"), ErrInvalidToken)
}

func TestValidateToken_RejectsForgedTokens(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users, newFakeRefreshTokenRepo(), nil)

	accessToken, _, _, err := svc.Register(context.Background(), "a@x.com", "secret1", "alice")
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.JWTSecret = "other-secret"
	other := NewAuthService(users, newFakeRefreshTokenRepo(), nil, otherCfg)

	_, err = other.ValidateToken(accessToken)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
