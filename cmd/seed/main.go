package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"finledger/internal/database"
	"finledger/internal/domain"
)

// Dev seeding: a superuser for the approval endpoint and a demo user.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "finledger.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.RefreshToken{},
		&domain.PasswordResetCode{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@finledger.local",
		PasswordHash: string(adminHash),
		FirstName:    "Admin",
		Phone:        "+10000000000",
		Birthday:     "1990-01-01",
		Country:      "CO",
		IsSuperuser:  true,
	}
	if err := db.Where("email = ?", admin.Email).FirstOrCreate(&admin).Error; err != nil {
		log.Fatal("seed admin failed:", err)
	}

	demoHash, _ := bcrypt.GenerateFromPassword([]byte("demo12345"), bcrypt.DefaultCost)
	demo := domain.User{
		Email:        "demo@finledger.local",
		PasswordHash: string(demoHash),
		FirstName:    "Demo",
		LastName:     "User",
		Phone:        "+10000000001",
		Birthday:     "2000-01-01",
		Country:      "CO",
	}
	if err := db.Where("email = ?", demo.Email).FirstOrCreate(&demo).Error; err != nil {
		log.Fatal("seed demo user failed:", err)
	}

	log.Printf("Seed complete: admin id=%d demo id=%d", admin.ID, demo.ID)
}
