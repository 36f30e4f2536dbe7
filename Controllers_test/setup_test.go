package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/scan-order/database"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/router"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

const adminKey = "admin-secret"

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Generate(context.Context, string, float32, int) (string, error) {
	return f.reply, f.err
}

type testEnv struct {
	db     *gorm.DB
	jwt    *utils.JWTManager
	router *gin.Engine
	llm    *fakeLLM
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)

	env := &testEnv{
		db:  db,
		jwt: utils.NewJWTManager("test-secret", time.Hour),
		llm: &fakeLLM{reply: "We open at 08:00."},
	}
	chat := services.NewChatService(db, env.llm, services.NewConversationStore(5), services.ChatOptions{Timeout: time.Second})
	env.router = router.SetupRouter(router.Options{
		DB:             db,
		JWT:            env.jwt,
		Chat:           chat,
		AllowedOrigins: []string{"*"},
		AdminAPIKey:    adminKey,
	})
	return env
}

// do sends a JSON request and decodes the response envelope.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if strings.HasPrefix(path, "/api/admin") || strings.HasPrefix(path, "/api/ai-config") {
		req.Header.Set("X-Admin-Key", adminKey)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func data(resp map[string]interface{}) map[string]interface{} {
	d, _ := resp["data"].(map[string]interface{})
	return d
}

func list(resp map[string]interface{}) []interface{} {
	l, _ := resp["data"].([]interface{})
	return l
}

// registerOwner signs up a new restaurant owner and returns the token and tenant id.
func (e *testEnv) registerOwner(t *testing.T, email string) (string, string) {
	t.Helper()
	code, resp := e.do(t, "POST", "/api/auth/register", map[string]string{
		"email":     email,
		"password":  "secret123",
		"full_name": "Linh",
	}, "")
	require.Equal(t, http.StatusCreated, code, resp["message"])
	d := data(resp)
	user := d["user"].(map[string]interface{})
	return d["access_token"].(string), user["tenant_id"].(string)
}

// addStaff creates a staff user at the branch and returns a token for it.
func (e *testEnv) addStaff(t *testing.T, tenantID, branchID, position string) string {
	t.Helper()
	user := models.User{TenantID: tenantID, Email: position + "@example.com", PasswordHash: "x", FullName: position}
	require.NoError(t, e.db.Create(&user).Error)
	staff := models.Staff{UserID: user.ID, BranchID: branchID, Position: position, Status: models.StatusActive}
	require.NoError(t, e.db.Create(&staff).Error)
	token, err := e.jwt.GenerateToken(user.ID)
	require.NoError(t, err)
	return token
}

type catalog struct {
	branchID string
	tableID  string
	burgerID string
	pizzaID  string
}

// seedCatalog creates a branch with one table and two dishes through the API.
func (e *testEnv) seedCatalog(t *testing.T, token string) catalog {
	t.Helper()
	var c catalog

	code, resp := e.do(t, "POST", "/api/branches", map[string]interface{}{
		"branch_name":         "District 1",
		"address":             "1 Le Loi",
		"opening_hours":       "08:00",
		"closing_hours":       "22:00",
		"cashback_percent":    2,
		"bank_code":           "VCB",
		"bank_account_number": "0123456789",
		"bank_account_name":   "PHO HOUSE",
	}, token)
	require.Equal(t, http.StatusCreated, code, resp["message"])
	c.branchID = data(resp)["branch_id"].(string)

	code, resp = e.do(t, "POST", "/api/branches/"+c.branchID+"/tables", map[string]interface{}{
		"table_number": "T1",
		"capacity":     4,
	}, token)
	require.Equal(t, http.StatusCreated, code, resp["message"])
	c.tableID = data(resp)["table_id"].(string)

	code, resp = e.do(t, "POST", "/api/categories", map[string]string{"category_name": "Mains"}, token)
	require.Equal(t, http.StatusCreated, code, resp["message"])
	categoryID := data(resp)["category_id"].(string)

	for name, price := range map[string]int{"Burger": 50000, "Pizza": 70000} {
		code, resp = e.do(t, "POST", "/api/menu-items", map[string]interface{}{
			"category_id": categoryID,
			"branch_id":   c.branchID,
			"item_name":   name,
			"price":       price,
		}, token)
		require.Equal(t, http.StatusCreated, code, resp["message"])
		if name == "Burger" {
			c.burgerID = data(resp)["menu_item_id"].(string)
		} else {
			c.pizzaID = data(resp)["menu_item_id"].(string)
		}
	}
	return c
}
