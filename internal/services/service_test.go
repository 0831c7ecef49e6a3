package services

import (
	"path/filepath"
	"testing"
	"time"

	"civicdesk/internal/db"
	"civicdesk/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-global connection at a throwaway SQLite
// database with the full schema applied.
func setupTestDB(t *testing.T) {
	t.Helper()

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
}

func createTestUser(t *testing.T, number string) models.User {
	t.Helper()
	user := models.User{Number: number}
	require.NoError(t, db.DB.Create(&user).Error)
	return user
}

func createTestAdmin(t *testing.T, email string) models.Admin {
	t.Helper()
	admin := models.Admin{Email: email, Password: "x"}
	require.NoError(t, db.DB.Create(&admin).Error)
	return admin
}

func createTestCategory(t *testing.T, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, db.DB.Create(&category).Error)
	return category
}

// createTestIssue backdates CreatedAt by age so creation-time ordering in
// tests is deterministic.
func createTestIssue(t *testing.T, userID, categoryID uint, rating int, age time.Duration) models.Issue {
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
