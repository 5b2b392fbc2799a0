package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const testBaseURL = "http://testserver"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:           testBaseURL,
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		PageSize:          6,
		RecipeCreateLimit: 100,
	}
}

// newTestAPI mounts every route on a fresh SQLite database. A nil images
// store is replaced by a local store in a temp dir.
func newTestAPI(t *testing.T, cfg *config.Config, images service.ImageStore) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	if images == nil {
		local, err := service.NewLocalImageStore(t.TempDir(), testBaseURL)
		require.NoError(t, err)
		images = local
	}

	router := gin.New()
	RegisterRoutes(router, Deps{Config: cfg, DB: db, Images: images})
	return &testAPI{
		t:      t,
		router: router,
		db:     db,
		auth:   service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL),
	}
}

func (a *testAPI) token(user *models.User) string {
	a.t.Helper()
	token, err := a.auth.GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// catalog seeds two ingredients and two tags.
type catalog struct {
	salt, flour   *models.Ingredient
	lunch, brunch *models.Tag
}

func seedCatalog(t *testing.T, db *gorm.DB) catalog {
	return catalog{
		salt:   testhelpers.CreateIngredient(t, db, "Salt", "g"),
		flour:  testhelpers.CreateIngredient(t, db, "Flour", "g"),
		lunch:  testhelpers.CreateTag(t, db, "Lunch", "lunch"),
		brunch: testhelpers.CreateTag(t, db, "Brunch", "brunch"),
	}
}

func (c catalog) recipeBody() map[string]any {
	return map[string]any{
		"ingredients": []map[string]any{
			{"id": c.salt.ID, "amount": 5},
			{"id": c.flour.ID, "amount": 250},
		},
		"tags":         []uint{c.lunch.ID},
		"cooking_time": 20,
		"name":         "Focaccia",
		"text":         "Proof overnight, bake hot.",
		"image":        testhelpers.PNGDataURI,
	}
}
