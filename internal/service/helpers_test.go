package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/database"
	"github.com/noah-isme/interview-agent-api/internal/models"
	"github.com/noah-isme/interview-agent-api/internal/repository"
	"github.com/noah-isme/interview-agent-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// wavBytes is the smallest payload mimetype recognises as audio/wav.
func wavBytes() []byte {
	payload := []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x44\xac\x00\x00\x88\x58\x01\x00\x02\x00\x10\x00data\x00\x00\x00\x00")
	return append(payload, bytes.Repeat([]byte{0}, 64)...)
}

func validAudio() string {
	return base64.StdEncoding.EncodeToString(wavBytes())
}

type fakeOracle struct {
	mu sync.Mutex

	questionErr  error
	hrErr        error
	scoreErr     error
	scoreErrOn   string
	reportErr    error
	score        ai.AnswerScore
	scoreByText  map[string]ai.AnswerScore
	report       ai.Report
	shortBy      int
	questionReqs []ai.QuestionRequest
	scoreCalls   int
	reportReqs   []ai.ReportRequest
	onScore      func()
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		score: ai.AnswerScore{Accuracy: 8, Relevance: 7, Communication: 8, Clarity: 7, Confidence: 8, Feedback: "solid"},
		report: ai.Report{
			Summary:        "Strong candidate",
			Recommendation: ai.RecommendationRecommend,
		},
	}
}

func (f *fakeOracle) GenerateQuestions(ctx context.Context, req ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
	f.mu.Lock()
	f.questionReqs = append(f.questionReqs, req)
	err := f.questionErr
	if req.Round == ai.RoundHR && f.hrErr != nil {
		err = f.hrErr
	}
	short := f.shortBy
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}

	difficulties := []string{"Easy", "medium", "hard"}
	questions := make([]ai.GeneratedQuestion, 0, req.Count)
	for i := 0; i < req.Count-short; i++ {
		questions = append(questions, ai.GeneratedQuestion{
			Text:             fmt.Sprintf("%s question %d for %s", req.Round, i, req.JobRole),
			Difficulty:       difficulties[i%len(difficulties)],
			ExpectedKeywords: []string{req.Round, "keyword"},
		})
	}
	return questions, nil
}

func (f *fakeOracle) ScoreAnswer(ctx context.Context, req ai.ScoreRequest) (ai.AnswerScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreCalls++
	if f.onScore != nil {
		f.onScore()
	}

	if f.scoreErr != nil && (f.scoreErrOn == "" || f.scoreErrOn == req.Question) {
		return ai.AnswerScore{}, f.scoreErr
	}
	if score, ok := f.scoreByText[req.Question]; ok {
		return score, nil
	}
	return f.score, nil
}

func (f *fakeOracle) SynthesizeReport(ctx context.Context, req ai.ReportRequest) (ai.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reportReqs = append(f.reportReqs, req)
	if f.reportErr != nil {
		return ai.Report{}, f.reportErr
	}
	return f.report, nil
}

func (f *fakeOracle) scoreCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scoreCalls
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(ctx context.Context, folder, name string, reader io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	key := folder + "/" + name
	m.mu.Lock()
	m.objects[key] = payload
	m.mu.Unlock()
	return "https://media.example.com/" + key, nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []InterviewEvent
}

func (r *recordingPublisher) Publish(ctx context.Context, event InterviewEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}

type recordingQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *recordingQueue) Enqueue(interviewID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, interviewID)
	return true
}

func (q *recordingQueue) enqueued() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.ids...)
}

type testEnv struct {
	db          *gorm.DB
	oracle      *fakeOracle
	storage     *memoryStorage
	events      *recordingPublisher
	queue       *recordingQueue
	interviews  InterviewService
	evaluations EvaluationService
	candidate   models.Candidate
	company     models.Company
}

func newTestEnv(t *testing.T, technical, hr int) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	env := &testEnv{
		db:      db,
		oracle:  newFakeOracle(),
		storage: newMemoryStorage(),
		events:  &recordingPublisher{},
		queue:   &recordingQueue{},
	}

	interviewRepo := repository.NewInterviewRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	sequencer := NewQuestionSequencer(questionRepo, env.oracle, testLogger())
	media := NewMediaService(env.storage, 1, 1, testLogger())

	env.interviews = NewInterviewService(
		interviewRepo, candidateRepo, companyRepo, questionRepo,
		sequencer, media, env.events, env.queue,
		InterviewConfig{TechnicalQuestions: technical, HRQuestions: hr},
		validator.New(), testLogger(),
	)
	env.evaluations = NewEvaluationService(
		evaluationRepo, interviewRepo, questionRepo, answerRepo, candidateRepo,
		env.oracle, nil, env.events,
		EvaluationConfig{Concurrency: 3},
		testLogger(),
	)

	env.candidate = models.Candidate{
		Email:    "candidate@example.com",
		FullName: "Jane Candidate",
		Skills:   []string{"go", "postgres"},
	}
	require.NoError(t, candidateRepo.Create(context.Background(), &env.candidate))

	env.company = models.Company{Email: "hr@example.com", CompanyName: "Acme"}
	require.NoError(t, companyRepo.Create(context.Background(), &env.company))

	return env
}

func (e *testEnv) createInterview(t *testing.T) string {
	t.Helper()
	resp, err := e.interviews.Create(context.Background(), e.company.ID, createRequest(e.candidate.ID))
	require.NoError(t, err)
	return resp.ID
}

// completeInterview starts the interview and answers every question.
func (e *testEnv) completeInterview(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	id := e.createInterview(t)

	question, err := e.interviews.Start(ctx, e.candidate.ID, id)
	require.NoError(t, err)

	for {
		resp, err := e.interviews.SubmitAnswer(ctx, e.candidate.ID, id, answerRequest(question.ID))
		require.NoError(t, err)
		if resp.Completed {
			return id
		}
		require.NotNil(t, resp.NextQuestion)
		question = *resp.NextQuestion
	}
}

var errOracleDown = errors.New("oracle unavailable")
