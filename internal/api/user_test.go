package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterLoginAndMe(t *testing.T) {
	a := newTestAPI(t, testConfig(), nil)

	signup := map[string]any{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Julia",
		"last_name":  "Child",
		"password":   "s3cret-pass",
	}
	w := a.do(http.MethodPost, "/api/users", signup, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "cook", created["username"])
	assert.NotContains(t, created, "password")

	w = a.do(http.MethodPost, "/api/users", signup, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode[types.ErrorResponse](t, w).Field)

	w = a.do(http.MethodPost, "/api/auth/token/login", types.LoginRequest{Email: "cook@example.com", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/auth/token/login", types.LoginRequest{Email: "cook@example.com", Password: "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[types.TokenResponse](t, w).AuthToken
	require.NotEmpty(t, token)

	w = a.do(http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[service.UserRepresentation](t, w)
	assert.Equal(t, "cook@example.com", me.Email)
	assert.Nil(t, me.Avatar)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/users/me", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/users/me", nil, "garbage").Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/api/auth/token/logout", nil, token).Code)
}

func TestSetPasswordEndpoint(t *testing.T) {
	a := newTestAPI(t, testConfig(), nil)
	signup := map[string]any{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Julia",
		"last_name":  "Child",
		"password":   "s3cret-pass",
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/users", signup, "").Code)
	w := a.do(http.MethodPost, "/api/auth/token/login", types.LoginRequest{Email: "cook@example.com", Password: "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[types.TokenResponse](t, w).AuthToken

	change := map[string]string{"current_password": "s3cret-pass", "new_password": "n3w-pass"}
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/users/set_password", change, "").Code)

	w = a.do(http.MethodPost, "/api/users/set_password", map[string]string{"current_password": "nope", "new_password": "n3w-pass"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "current_password", decode[types.ErrorResponse](t, w).Field)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/api/users/set_password", change, token).Code)

	w = a.do(http.MethodPost, "/api/auth/token/login", types.LoginRequest{Email: "cook@example.com", Password: "n3w-pass"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenForDeletedUser(t *testing.T) {
	a := newTestAPI(t, testConfig(), nil)
	user := testhelpers.CreateUser(t, a.db, "ghost")
	token := a.token(user)

	require.NoError(t, a.db.Delete(user).Error)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/users/me", nil, token).Code)
}

func TestAvatarEndpoints(t *testing.T) {
	a := newTestAPI(t, testConfig(), nil)
	user := testhelpers.CreateUser(t, a.db, "painter")
	token := a.token(user)

	w := a.do(http.MethodPut, "/api/users/me/avatar", types.AvatarRequest{Avatar: "nope"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "avatar", decode[types.ErrorResponse](t, w).Field)

	w = a.do(http.MethodPut, "/api/users/me/avatar", types.AvatarRequest{Avatar: testhelpers.PNGDataURI}, token)
	require.Equal(t, http.StatusOK, w.Code)
	url := decode[types.AvatarResponse](t, w).Avatar
	assert.Contains(t, url, testBaseURL+"/media/avatars/")

	w = a.do(http.MethodGet, "/api/users/"+user.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	rep := decode[service.UserRepresentation](t, w)
	require.NotNil(t, rep.Avatar)
	assert.Equal(t, url, *rep.Avatar)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/users/me/avatar", nil, token).Code)
}

func TestSubscriptionEndpoints(t *testing.T) {
	a := newTestAPI(t, testConfig(), nil)
	reader := testhelpers.CreateUser(t, a.db, "reader")
	writer := testhelpers.CreateUser(t, a.db, "writer")
	token := a.token(reader)

	w := a.do(http.MethodPost, "/api/users/"+reader.ID.String()+"/subscribe", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/users/"+writer.ID.String()+"/subscribe", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	followed := decode[service.SubscribedAuthor](t, w)
	assert.Equal(t, "writer", followed.Username)
	assert.True(t, followed.IsSubscribed)

	w = a.do(http.MethodPost, "/api/users/"+writer.ID.String()+"/subscribe", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/users/"+writer.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[service.UserRepresentation](t, w).IsSubscribed)

	w = a.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[service.SubscribedAuthor]](t, w)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, writer.ID, page.Results[0].ID)

	w = a.do(http.MethodGet, "/api/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[types.Page[service.UserRepresentation]](t, w).Count)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/users/"+writer.ID.String()+"/subscribe", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/users/"+writer.ID.String()+"/subscribe", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/api/users/not-a-uuid/subscribe", nil, token).Code)
}
