package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Candidate{},
		&models.Company{},
		&models.Interview{},
		&models.Question{},
		&models.Answer{},
		&models.InterviewEvaluation{},
		&models.QuestionEvaluation{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
