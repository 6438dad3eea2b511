package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Candidate{},
		&models.Company{},
		&models.Interview{},
		&models.Question{},
		&models.Answer{},
		&models.InterviewEvaluation{},
		&models.QuestionEvaluation{},
	))
	return db
}

func seedQuestions(technical, hr int) []models.Question {
	questions := make([]models.Question, 0, technical+hr)
	for i := 0; i < technical+hr; i++ {
		round := models.RoundTechnical
		if i >= technical {
			round = models.RoundHR
		}
		questions = append(questions, models.Question{
			Order:            i,
			RoundType:        round,
			Text:             fmt.Sprintf("question %d", i),
			Difficulty:       models.DifficultyMedium,
			ExpectedKeywords: []string{"keyword"},
		})
	}
	return questions
}
