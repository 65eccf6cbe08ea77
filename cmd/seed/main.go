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
	adminEmail := flag.String("admin-email", "", "email of the admin who will own the seeded questions (required)")
	flag.Parse()

	if *adminEmail == "" {
		flag.Usage()
		log.Fatal("-admin-email is required")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx := context.Background()

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiration)
	owner, err := authService.FindUserByEmail(ctx, *adminEmail)
	if err != nil {
		log.Fatalf("Failed to find admin %s: %v", *adminEmail, err)
	}

	// Seeding writes straight to the database; the running server's cache
	// expires on its own TTL.
	questionService := services.NewQuestionService(db, nil, cfg.CacheTTL)

	log.Printf("Seeding questions...")
	inserted, err := seedQuestions(ctx, questionService, owner.ID, sampleQuestions)
	if err != nil {
		log.Fatal("Seeding error:", err)
	}
	log.Printf("Seeding complete: %d inserted, %d skipped", inserted, len(sampleQuestions)-inserted)
}

// seedQuestions creates every question whose title is not already stored.
func seedQuestions(ctx context.Context, questionService *services.QuestionService, ownerID uint, questions []services.QuestionInput) (int, error) {
	inserted := 0
	for i := range questions {
		q := &questions[i]

		exists, err := questionService.QuestionExistsByTitle(ctx, q.Title)
		if err != nil {
			return inserted, err
		}
		if exists {
			log.Printf("Question already seeded, skipping: %s", q.Title)
			continue
		}

		if _, err := questionService.CreateQuestion(ctx, ownerID, q); err != nil {
			return inserted, err
		}
		log.Printf("Inserted question: %s", q.Title)
		inserted++
	}
	return inserted, nil
}
