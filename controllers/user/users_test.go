package userControllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Ags961/Arambam-eCommerce/auth"
	userControllers "github.com/Ags961/Arambam-eCommerce/controllers/user"
	"github.com/Ags961/Arambam-eCommerce/models"
)

func setupUserTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := testDB.AutoMigrate(&models.User{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	userGroup := r.Group("/user")
	{
		userGroup.POST("/register", userControllers.RegisterUser(testDB))
		userGroup.POST("/login", userControllers.LoginUser(testDB))
		userGroup.POST("/admin", userControllers.AdminLogin())
	}
	return r, testDB
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func tokenFrom(t *testing.T, recorder *httptest.ResponseRecorder) string {
	var response struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.NotEmpty(t, response.Token)
	return response.Token
}

func TestRegisterUser(t *testing.T) {
	router, testDB := setupUserTestRouter(t)

	t.Run("creates user with empty cart and returns a token", func(t *testing.T) {
		recorder := postJSON(router, "/user/register", gin.H{
			"name": "Ada", "email": "ada@example.com", "password": "longenough",
		})
		assert.Equal(t, http.StatusCreated, recorder.Code)

		token := tokenFrom(t, recorder)
		claims, err := auth.ParseToken(token)
		assert.NoError(t, err)

		var user models.User
		assert.NoError(t, testDB.Preload("Cart").Where("email = ?", "ada@example.com").First(&user).Error)
		assert.Equal(t, user.ID, claims["id"])
		assert.NotEqual(t, "longenough", user.Password) // stored hashed
		assert.Equal(t, user.ID, user.Cart.UserID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		recorder := postJSON(router, "/user/register", gin.H{
			"name": "Ada2", "email": "ada@example.com", "password": "longenough",
		})
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		recorder := postJSON(router, "/user/register", gin.H{
			"name": "Bob", "email": "not-an-email", "password": "longenough",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		recorder := postJSON(router, "/user/register", gin.H{
			"name": "Bob", "email": "bob@example.com", "password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestLoginUser(t *testing.T) {
	router, _ := setupUserTestRouter(t)

	recorder := postJSON(router, "/user/register", gin.H{
		"name": "Ada", "email": "ada@example.com", "password": "longenough",
	})
	assert.Equal(t, http.StatusCreated, recorder.Code)

	t.Run("valid credentials return a token", func(t *testing.T) {
		recorder := postJSON(router, "/user/login", gin.H{
			"email": "ada@example.com", "password": "longenough",
		})
		assert.Equal(t, http.StatusOK, recorder.Code)
		tokenFrom(t, recorder)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		recorder := postJSON(router, "/user/login", gin.H{
			"email": "ada@example.com", "password": "wrongpassword",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		recorder := postJSON(router, "/user/login", gin.H{
			"email": "ghost@example.com", "password": "longenough",
		})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestAdminLogin(t *testing.T) {
	router, _ := setupUserTestRouter(t)
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "adminsecret")

	t.Run("valid admin credentials return an admin token", func(t *testing.T) {
		recorder := postJSON(router, "/user/admin", gin.H{
			"email": "admin@example.com", "password": "adminsecret",
		})
		assert.Equal(t, http.StatusOK, recorder.Code)

		claims, err := auth.ParseToken(tokenFrom(t, recorder))
		assert.NoError(t, err)
		assert.Equal(t, true, claims["admin"])
	})

	t.Run("wrong credentials are unauthorized", func(t *testing.T) {
		recorder := postJSON(router, "/user/admin", gin.H{
			"email": "admin@example.com", "password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
