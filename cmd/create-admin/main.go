package main

import (
	"context"
	"flag"
	"log"

	"practicetests/config"
	"practicetests/models"
	"practicetests/services"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Admin User", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		log.Fatal("Both -email and -password are required")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiration)
	user, err := authService.EnsureAdmin(context.Background(), *email, *password, *name)
	if err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Printf("Admin user created/updated: id=%d email=%s name=%s role=%s", user.ID, user.Email, user.Name, user.Role)
	log.Printf("Log in through POST /api/auth/login to retrieve a token.")
}
