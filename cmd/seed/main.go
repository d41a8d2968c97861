package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"blogink/internal/database"
	"blogink/internal/domain"
	"blogink/internal/repository"
)

func main() {
	db, err := database.Connect("blogink.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM users")

	users := repository.NewUserRepository(db)
	ctx := context.Background()

	log.Println("Creating users...")

	staffHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	staff := domain.User{
		Email:        "admin@blogink.dev",
		PasswordHash: string(staffHash),
		FullName:     "Site Admin",
		IsStaff:      true,
	}
	if err := users.Create(ctx, &staff); err != nil {
		log.Fatal("seed staff user:", err)
	}

	readerHash, _ := bcrypt.GenerateFromPassword([]byte("reader123"), bcrypt.DefaultCost)
	reader := domain.User{
		Email:        "reader@blogink.dev",
		PasswordHash: string(readerHash),
		FullName:     "Test Reader",
		Phone:        "+8801700000000",
		Address:      "Dhaka",
	}
	if err := users.Create(ctx, &reader); err != nil {
		log.Fatal("seed reader user:", err)
	}

	log.Printf("Done. staff=%d reader=%d", staff.ID, reader.ID)
}
