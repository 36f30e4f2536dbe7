package Controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRequiresKey(t *testing.T) {
	env := setup(t)

	for _, key := range []string{"", "wrong"} {
		req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
		if key != "" {
			req.Header.Set("X-Admin-Key", key)
		}
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid admin key")
	}
}

func TestAdminDashboardAndRestaurants(t *testing.T) {
	env := setup(t)
	owner, tenantID := env.registerOwner(t, "owner@example.com")
	cat := env.seedCatalog(t, owner)
	env.addStaff(t, tenantID, cat.branchID, "Cashier")
	env.registerOwner(t, "second@example.com")

	code, resp := env.do(t, "GET", "/api/admin/dashboard", nil, "")
	require.Equal(t, http.StatusOK, code, resp["message"])
	assert.Equal(t, float64(2), data(resp)["total_restaurants"])
	assert.Equal(t, float64(2), data(resp)["active_restaurants"])
	assert.Equal(t, float64(3), data(resp)["total_users"])

	code, resp = env.do(t, "GET", "/api/admin/restaurants?limit=1", nil, "")
	require.Equal(t, http.StatusOK, code)
	page := data(resp)
	assert.Equal(t, float64(2), page["total"])
	assert.Equal(t, float64(2), page["total_pages"])
	rows := page["data"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "owner@example.com", row["owner_email"])
	assert.Equal(t, float64(1), row["branch_count"])

	code, resp = env.do(t, "PATCH", "/api/admin/restaurants/"+tenantID+"/status", map[string]string{"status": "inactive"}, "")
	require.Equal(t, http.StatusOK, code, resp["message"])
	assert.Equal(t, "Restaurant status updated to inactive", resp["message"])

	code, resp = env.do(t, "GET", "/api/admin/dashboard", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), data(resp)["active_restaurants"])

	// branches of an inactive restaurant disappear from the guest listing
	code, resp = env.do(t, "GET", "/api/public/branches", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, list(resp))

	code, resp = env.do(t, "PATCH", "/api/admin/restaurants/"+tenantID+"/status", map[string]string{"status": "closed"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Status must be one of [active inactive]", resp["message"])

	code, resp = env.do(t, "PATCH", "/api/admin/restaurants/missing/status", map[string]string{"status": "active"}, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Restaurant not found", resp["message"])
}

func TestAdminUsers(t *testing.T) {
	env := setup(t)
	owner, tenantID := env.registerOwner(t, "owner@example.com")
	cat := env.seedCatalog(t, owner)
	env.addStaff(t, tenantID, cat.branchID, "Cashier")

	code, resp := env.do(t, "GET", "/api/admin/users?role=staff", nil, "")
	require.Equal(t, http.StatusOK, code, resp["message"])
	users := data(resp)["data"].([]interface{})
	require.Len(t, users, 1)
	staff := users[0].(map[string]interface{})
	assert.Equal(t, "Cashier@example.com", staff["email"])
	assert.Equal(t, "Linh's Restaurant", staff["tenant_name"])
	staffID := staff["user_id"].(string)

	code, resp = env.do(t, "PATCH", "/api/admin/users/"+staffID+"/status", map[string]string{"status": "inactive"}, "")
	require.Equal(t, http.StatusOK, code, resp["message"])

	code, resp = env.do(t, "GET", "/api/admin/dashboard", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), data(resp)["active_users"])

	code, resp = env.do(t, "DELETE", "/api/admin/users/"+staffID, nil, "")
	require.Equal(t, http.StatusOK, code, resp["message"])
	code, _ = env.do(t, "DELETE", "/api/admin/users/"+staffID, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
}
