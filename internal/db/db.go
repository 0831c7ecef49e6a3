package db

import (
	"log"
	"os"

	"civicdesk/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=civicdesk port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedCategories(DB)
}

// Migrate applies the schema. Split out from Init so tests can run it
// against their own database.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Category{},
		&models.Issue{},
		&models.Repost{},
		&models.Comment{},
	)
}

func seedCategories(gdb *gorm.DB) {
	var count int64
	gdb.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	categories := []models.Category{
		{Name: "Road", Description: "Potholes, broken pavement, signage"},
		{Name: "Water", Description: "Supply outages, leaks, contamination"},
		{Name: "Sanitation", Description: "Garbage collection, drains, public toilets"},
		{Name: "Electricity", Description: "Street lights, power outages, exposed wiring"},
		{Name: "Other", Description: "Anything that does not fit the above"},
	}

	for _, category := range categories {
		if err := gdb.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Name, err)
		}
	}
	log.Println("Initial categories created successfully")
}
