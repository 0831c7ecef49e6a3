package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"civicdesk/internal/db"
	"civicdesk/internal/models"
	"civicdesk/internal/router"
	"civicdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dbPath := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	prev := db.DB
	db.DB = gdb
	t.Cleanup(func() { db.DB = prev })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	router.RegisterRoutes(r)
	return r
}

func userToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.SignToken(user.ID, utils.RoleUser, user.Number, "")
	require.NoError(t, err)
	return token
}

func adminToken(t *testing.T, admin models.Admin) string {
	t.Helper()
	token, err := utils.SignToken(admin.ID, utils.RoleAdmin, "", admin.Email)
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, number string) models.User {
	t.Helper()
	user := models.User{Number: number}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func seedAdmin(t *testing.T, email, password string) models.Admin {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	admin := models.Admin{Email: email, Password: hash}
	require.NoError(t, db.DB.Create(&admin).Error)
	return admin
}

func seedCategory(t *testing.T, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, db.DB.Create(&category).Error)
	return category
}

func seedIssue(t *testing.T, userID, categoryID uint, rating int, age time.Duration) models.Issue {
	t.Helper()
	issue := models.Issue{
		Title:            "test issue",
		Description:      "something is broken",
		ImportanceRating: rating,
		UserID:           userID,
		CategoryID:       categoryID,
		CreatedAt:        time.Now().Add(-age),
	}
	require.NoError(t, db.DB.Create(&issue).Error)
	return issue
}

func TestOTPLoginFlow(t *testing.T) {
	// Stub out the Twilio Verify API.
	verify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/Services/VA_test/Verifications":
			fmt.Fprint(w, `{"sid":"VE123","status":"pending"}`)
		case "/Services/VA_test/VerificationCheck":
			status := "approved"
			if r.PostForm.Get("Code") != "123456" {
				status = "pending"
			}
			fmt.Fprintf(w, `{"sid":"VE123","status":%q}`, status)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer verify.Close()

	t.Setenv("TWILIO_ACCOUNT_SID", "AC_test")
	t.Setenv("TWILIO_AUTH_TOKEN", "token_test")
	t.Setenv("TWILIO_VERIFY_SERVICE_SID", "VA_test")
	t.Setenv("TWILIO_VERIFY_BASE_URL", verify.URL)

	r := setupTestServer(t)

	w := doJSON(r, "POST", "/api/user/request-otp", "", gin.H{"phone": "+15550000001"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Wrong code is rejected.
	w = doJSON(r, "POST", "/api/user/verify-otp", "", gin.H{"phone": "+15550000001", "otp": "000000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Right code auto-registers the user and issues a token.
	w = doJSON(r, "POST", "/api/user/verify-otp", "", gin.H{"phone": "+15550000001", "otp": "123456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Number string `json:"number"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "+15550000001", resp.User.Number)

	// The token works against a protected route.
	w = doJSON(r, "GET", "/api/user/issues", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Missing body fields.
	w = doJSON(r, "POST", "/api/user/request-otp", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminLogin(t *testing.T) {
	r := setupTestServer(t)
	seedAdmin(t, "staff@city.gov", "hunter22")

	w := doJSON(r, "POST", "/api/admin/login", "", gin.H{"email": "staff@city.gov", "password": "hunter22"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	w = doJSON(r, "POST", "/api/admin/login", "", gin.H{"email": "staff@city.gov", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, "POST", "/api/admin/login", "", gin.H{"email": "ghost@city.gov", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndListIssues(t *testing.T) {
	r := setupTestServer(t)
	user := seedUser(t, "+15550000001")
	other := seedUser(t, "+15550000002")
	category := seedCategory(t, "Road")
	token := userToken(t, user)

	w := doJSON(r, "POST", "/api/user/issues", token, gin.H{
		"title":            "Pothole on Main Street",
		"description":      "Deep pothole near the crossing",
		"categoryId":       category.ID,
		"importanceRating": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Out-of-range rating is rejected at the boundary.
	w = doJSON(r, "POST", "/api/user/issues", token, gin.H{
		"title":            "x",
		"description":      "y",
		"categoryId":       category.ID,
		"importanceRating": 7,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	seedIssue(t, other.ID, category.ID, 5, time.Hour)

	// User listing only shows the caller's issues, priority attached.
	w = doJSON(r, "GET", "/api/user/issues", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Issues []models.Issue `json:"issues"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, user.ID, resp.Issues[0].UserID)
	require.NotNil(t, resp.Issues[0].Priority)
	assert.Equal(t, 4.0, resp.Issues[0].Priority.TotalPriority)

	// Admin listing is unscoped.
	admin := seedAdmin(t, "staff@city.gov", "hunter22")
	w = doJSON(r, "GET", "/api/admin/issues", adminToken(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	// A user token is not enough for the admin surface.
	w = doJSON(r, "GET", "/api/admin/issues", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRepostEndpoints(t *testing.T) {
	r := setupTestServer(t)
	owner := seedUser(t, "+15550000001")
	supporter := seedUser(t, "+15550000002")
	category := seedCategory(t, "Road")
	issue := seedIssue(t, owner.ID, category.ID, 3, time.Hour)

	ownerTok := userToken(t, owner)
	supporterTok := userToken(t, supporter)
	path := "/api/user/issues/" + utils.UintToString(issue.ID) + "/repost"

	// Endorse.
	w := doJSON(r, "POST", path, supporterTok, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"repostCount":1`)

	// Duplicate is a conflict and leaves the count alone.
	w = doJSON(r, "POST", path, supporterTok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Self-repost is forbidden.
	w = doJSON(r, "POST", path, ownerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Status check never 404s.
	w = doJSON(r, "GET", path, supporterTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hasReposted":true`)

	w = doJSON(r, "GET", "/api/user/issues/9999/repost", supporterTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hasReposted":false`)

	// Withdraw, then a second withdraw is a 404.
	w = doJSON(r, "DELETE", path, supporterTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"repostCount":0`)

	w = doJSON(r, "DELETE", path, supporterTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Missing issue on add.
	w = doJSON(r, "POST", "/api/user/issues/9999/repost", supporterTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentEndpoints(t *testing.T) {
	r := setupTestServer(t)
	owner := seedUser(t, "+15550000001")
	other := seedUser(t, "+15550000002")
	admin := seedAdmin(t, "staff@city.gov", "hunter22")
	category := seedCategory(t, "Road")
	issue := seedIssue(t, owner.ID, category.ID, 3, time.Hour)

	adminTok := adminToken(t, admin)
	commentsPath := "/api/admin/issues/" + utils.UintToString(issue.ID) + "/comments"

	w := doJSON(r, "POST", commentsPath, adminTok, gin.H{"content": "Crew dispatched."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Comment models.Comment `json:"comment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(r, "POST", commentsPath, adminTok, gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The issue owner can read the thread, another user cannot.
	userPath := "/api/user/issues/" + utils.UintToString(issue.ID) + "/comments"
	w = doJSON(r, "GET", userPath, userToken(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "GET", userPath, userToken(t, other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A second admin may edit and delete the first admin's comment.
	editor := seedAdmin(t, "editor@city.gov", "hunter22")
	commentPath := "/api/admin/comments/" + utils.UintToString(created.Comment.ID)
	w = doJSON(r, "PUT", commentPath, adminToken(t, editor), gin.H{"content": "Crew on site."})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "DELETE", commentPath, adminToken(t, editor), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "DELETE", commentPath, adminToken(t, editor), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateIssueStatus(t *testing.T) {
	r := setupTestServer(t)
	owner := seedUser(t, "+15550000001")
	admin := seedAdmin(t, "staff@city.gov", "hunter22")
	category := seedCategory(t, "Road")
	issue := seedIssue(t, owner.ID, category.ID, 3, time.Hour)

	adminTok := adminToken(t, admin)
	path := "/api/admin/issues/" + utils.UintToString(issue.ID) + "/status"

	w := doJSON(r, "PUT", path, adminTok, gin.H{"status": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":5`)

	w = doJSON(r, "PUT", path, adminTok, gin.H{"status": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "PUT", path, adminTok, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "PUT", "/api/admin/issues/9999/status", adminTok, gin.H{"status": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
