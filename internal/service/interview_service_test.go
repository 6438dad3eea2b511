package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/models"
	"github.com/noah-isme/interview-agent-api/pkg/ai"
)

func createRequest(candidateID string) dto.InterviewCreateRequest {
	return dto.InterviewCreateRequest{
		CandidateID: candidateID,
		JobRole:     "Backend <b>Engineer</b>",
	}
}

func answerRequest(questionID string) dto.AnswerSubmitRequest {
	return dto.AnswerSubmitRequest{
		QuestionID: questionID,
		AudioData:  validAudio(),
		AnswerText: "I would use a worker pool",
	}
}

func TestCreateGeneratesOrderedQuestionSet(t *testing.T) {
	env := newTestEnv(t, 8, 5)
	ctx := context.Background()

	resp, err := env.interviews.Create(ctx, env.company.ID, createRequest(env.candidate.ID))
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusPending, resp.Status)
	require.Equal(t, models.ProvisioningReady, resp.Provisioning)
	require.Equal(t, 13, resp.TotalQuestions)
	require.Equal(t, "Backend Engineer", resp.JobRole)

	questions, err := env.interviews.Questions(ctx, env.company.ID, resp.ID)
	require.NoError(t, err)
	require.Len(t, questions, 13)
	for i, question := range questions {
		require.Equal(t, i, question.Order)
		if i < 8 {
			require.Equal(t, models.RoundTechnical, question.RoundType)
		} else {
			require.Equal(t, models.RoundHR, question.RoundType)
		}
		require.NotEmpty(t, question.ExpectedKeywords)
		require.Contains(t, []string{"easy", "medium", "hard"}, question.Difficulty)
	}

	var technicalReq, hrReq ai.QuestionRequest
	for _, req := range env.oracle.questionReqs {
		if req.Round == ai.RoundHR {
			hrReq = req
		} else {
			technicalReq = req
		}
	}
	require.Equal(t, []string{"go", "postgres"}, technicalReq.Skills)
	require.Equal(t, SoftSkills, hrReq.Skills)
}

func TestCreateUnknownCandidate(t *testing.T) {
	env := newTestEnv(t, 2, 1)

	_, err := env.interviews.Create(context.Background(), env.company.ID, createRequest("missing"))
	require.ErrorIs(t, err, ErrCandidateNotFound)
	require.Empty(t, env.oracle.questionReqs)
}

func TestCreateOracleFailureStoresFailedInterview(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	env.oracle.hrErr = errOracleDown
	ctx := context.Background()

	_, err := env.interviews.Create(ctx, env.company.ID, createRequest(env.candidate.ID))
	require.ErrorIs(t, err, ErrQuestionGeneration)
	require.Equal(t, KindOracleFailure, KindOf(err))

	var serviceErr *Error
	require.True(t, errors.As(err, &serviceErr))
	interviewID := serviceErr.Details["interview_id"]
	require.NotEmpty(t, interviewID)

	stored, err := env.interviews.Get(ctx, Principal{ID: env.company.ID, Role: RoleCompany}, interviewID)
	require.NoError(t, err)
	require.Equal(t, models.ProvisioningFailed, stored.Provisioning)

	var count int64
	require.NoError(t, env.db.Model(&models.Question{}).Where("interview_id = ?", interviewID).Count(&count).Error)
	require.Zero(t, count)

	_, err = env.interviews.Start(ctx, env.candidate.ID, interviewID)
	require.ErrorIs(t, err, ErrInterviewNotReady)

	env.oracle.hrErr = nil
	retried, err := env.interviews.RetryProvisioning(ctx, env.company.ID, interviewID)
	require.NoError(t, err)
	require.Equal(t, models.ProvisioningReady, retried.Provisioning)

	_, err = env.interviews.RetryProvisioning(ctx, env.company.ID, interviewID)
	require.ErrorIs(t, err, ErrProvisioningComplete)

	question, err := env.interviews.Start(ctx, env.candidate.ID, interviewID)
	require.NoError(t, err)
	require.Equal(t, 0, question.Order)
}

func TestCreateRejectsShortQuestionBatch(t *testing.T) {
	env := newTestEnv(t, 3, 2)
	env.oracle.shortBy = 1

	_, err := env.interviews.Create(context.Background(), env.company.ID, createRequest(env.candidate.ID))
	require.ErrorIs(t, err, ErrQuestionGeneration)
	require.ErrorIs(t, err, ai.ErrMalformedResponse)
}

func TestStartServesFirstQuestionAndRejectsRestart(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	ctx := context.Background()
	id := env.createInterview(t)

	question, err := env.interviews.Start(ctx, env.candidate.ID, id)
	require.NoError(t, err)
	require.Equal(t, 0, question.Order)
	require.Equal(t, 1, question.QuestionNumber)
	require.Equal(t, 3, question.TotalQuestions)
	require.Empty(t, question.ExpectedKeywords)

	_, err = env.interviews.Start(ctx, env.candidate.ID, id)
	require.ErrorIs(t, err, ErrInterviewNotPending)
	require.Equal(t, KindInvalidState, KindOf(err))

	require.Equal(t, []string{EventInterviewStarted}, env.events.types())
}

func TestStartForbiddenForOtherCandidate(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	id := env.createInterview(t)

	_, err := env.interviews.Start(context.Background(), "someone-else", id)
	require.ErrorIs(t, err, ErrInterviewForbidden)
}

func TestSubmitAnswerWhilePendingIsRejected(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	ctx := context.Background()
	id := env.createInterview(t)

	questions, err := env.interviews.Questions(ctx, env.company.ID, id)
	require.NoError(t, err)

	_, err = env.interviews.SubmitAnswer(ctx, env.candidate.ID, id, answerRequest(questions[0].ID))
	require.ErrorIs(t, err, ErrInterviewNotActive)
	require.Equal(t, KindInvalidState, KindOf(err))
	require.Zero(t, env.storage.count())
}

func TestSubmitAnswerOutOfTurn(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	ctx := context.Background()
	id := env.createInterview(t)

	_, err := env.interviews.Start(ctx, env.candidate.ID, id)
	require.NoError(t, err)

	questions, err := env.interviews.Questions(ctx, env.company.ID, id)
	require.NoError(t, err)

	_, err = env.interviews.SubmitAnswer(ctx, env.candidate.ID, id, answerRequest(questions[1].ID))
	require.ErrorIs(t, err, ErrQuestionOutOfTurn)
	require.Zero(t, env.storage.count())
}

func TestSubmitAnswerRejectsInvalidAudio(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	ctx := context.Background()
	id := env.createInterview(t)

	question, err := env.interviews.Start(ctx, env.candidate.ID, id)
	require.NoError(t, err)

	req := answerRequest(question.ID)
	req.AudioData = "not-base64-at-all!!"
	_, err = env.interviews.SubmitAnswer(ctx, env.candidate.ID, id, req)
	require.ErrorIs(t, err, ErrInvalidAudio)

	progress, err := env.interviews.Progress(ctx, Principal{ID: env.candidate.ID, Role: RoleCandidate}, id)
	require.NoError(t, err)
	require.Equal(t, 0, progress.CurrentQuestionIndex)
}

func TestSubmitAnswerStorageFailureKeepsIndex(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	ctx := context.Background()
	id := env.createInterview(t)

	question, err := env.interviews.Start(ctx, env.candidate.ID, id)
	require.NoError(t, err)

	env.storage.err = errors.New("cloud down")
	_, err = env.interviews.SubmitAnswer(ctx, env.candidate.ID, id, answerRequest(question.ID))
	require.ErrorIs(t, err, ErrMediaStorage)
	require.Equal(t, KindStoreFailure, KindOf(err))

	current, err := env.interviews.CurrentQuestion(ctx, env.candidate.ID, id)
	require.NoError(t, err)
	require.Equal(t, question.ID, current.ID)
}

func TestFullInterviewProgression(t *testing.T) {
	env := newTestEnv(t, 8, 5)
	ctx := context.Background()
	candidate := Principal{ID: env.candidate.ID, Role: RoleCandidate}
	id := env.createInterview(t)

	question, err := env.interviews.Start(ctx, env.candidate.ID, id)
	require.NoError(t, err)

	lastIndex := 0
	for i := 0; i < 13; i++ {
		require.Equal(t, i, question.Order)

		progress, err := env.interviews.Progress(ctx, candidate, id)
		require.NoError(t, err)
		require.GreaterOrEqual(t, progress.CurrentQuestionIndex, lastIndex)
		lastIndex = progress.CurrentQuestionIndex
		if i < 8 {
			require.Equal(t, models.RoundTechnical, progress.CurrentRound)
		} else {
			require.Equal(t, models.RoundHR, progress.CurrentRound)
		}

		resp, err := env.interviews.SubmitAnswer(ctx, env.candidate.ID, id, answerRequest(question.ID))
		require.NoError(t, err)
		require.Equal(t, i+1, resp.Progress.CurrentQuestionIndex)

		if i == 12 {
			require.True(t, resp.Completed)
			require.Nil(t, resp.NextQuestion)
			require.Equal(t, ClosingMessage, resp.Message)
			require.Equal(t, 100.0, resp.Progress.CompletionPercentage)
			break
		}
		require.False(t, resp.Completed)
		require.NotNil(t, resp.NextQuestion)
		question = *resp.NextQuestion
	}

	interview, err := env.interviews.Get(ctx, candidate, id)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusCompleted, interview.Status)
	require.NotNil(t, interview.CompletedAt)
	require.Equal(t, 13, interview.CurrentQuestionIndex)

	require.Equal(t, []string{id}, env.queue.enqueued())
	require.Equal(t, 13, env.storage.count())
	require.Contains(t, env.events.types(), EventInterviewComplete)

	_, err = env.interviews.SubmitAnswer(ctx, env.candidate.ID, id, answerRequest(question.ID))
	require.ErrorIs(t, err, ErrInterviewNotActive)

	var answers int64
	require.NoError(t, env.db.Model(&models.Answer{}).Where("interview_id = ?", id).Count(&answers).Error)
	require.EqualValues(t, 13, answers)
}

func TestConcurrentSubmitAdvancesOnce(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	ctx := context.Background()
	id := env.createInterview(t)

	question, err := env.interviews.Start(ctx, env.candidate.ID, id)
	require.NoError(t, err)

	const attempts = 4
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.interviews.SubmitAnswer(ctx, env.candidate.ID, id, answerRequest(question.ID))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.Equal(t, KindInvalidState, KindOf(err))
	}
	require.Equal(t, 1, succeeded)

	progress, err := env.interviews.Progress(ctx, Principal{ID: env.candidate.ID, Role: RoleCandidate}, id)
	require.NoError(t, err)
	require.Equal(t, 1, progress.CurrentQuestionIndex)

	var answers int64
	require.NoError(t, env.db.Model(&models.Answer{}).Where("interview_id = ?", id).Count(&answers).Error)
	require.EqualValues(t, 1, answers)
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	ctx := context.Background()
	id := env.createInterview(t)

	_, err := env.interviews.Cancel(ctx, "other-company", id, dto.InterviewCancelRequest{})
	require.ErrorIs(t, err, ErrInterviewForbidden)

	resp, err := env.interviews.Cancel(ctx, env.company.ID, id, dto.InterviewCancelRequest{Reason: "<i>role filled</i>"})
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusCancelled, resp.Status)
	require.Equal(t, "role filled", resp.CancelReason)

	_, err = env.interviews.Cancel(ctx, env.company.ID, id, dto.InterviewCancelRequest{})
	require.ErrorIs(t, err, ErrInterviewFinished)

	_, err = env.interviews.Start(ctx, env.candidate.ID, id)
	require.ErrorIs(t, err, ErrInterviewNotPending)
}

func TestListForCompanyIncludesCandidate(t *testing.T) {
	env := newTestEnv(t, 1, 1)
	ctx := context.Background()
	env.createInterview(t)
	env.createInterview(t)

	items, err := env.interviews.ListForCompany(ctx, env.company.ID, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Jane Candidate", items[0].CandidateName)
	require.Equal(t, "candidate@example.com", items[0].CandidateEmail)

	pending, err := env.interviews.ListForCandidate(ctx, env.candidate.ID, models.InterviewStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	active, err := env.interviews.ListForCandidate(ctx, env.candidate.ID, models.InterviewStatusInProgress)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestQuestionVisibility(t *testing.T) {
	env := newTestEnv(t, 2, 1)
	ctx := context.Background()
	id := env.createInterview(t)

	all, err := env.interviews.Questions(ctx, env.company.ID, id)
	require.NoError(t, err)

	_, err = env.interviews.Question(ctx, env.candidate.ID, all[0].ID)
	require.ErrorIs(t, err, ErrQuestionOutOfTurn)

	_, err = env.interviews.Start(ctx, env.candidate.ID, id)
	require.NoError(t, err)

	first, err := env.interviews.Question(ctx, env.candidate.ID, all[0].ID)
	require.NoError(t, err)
	require.Empty(t, first.ExpectedKeywords)

	_, err = env.interviews.Question(ctx, env.candidate.ID, all[2].ID)
	require.ErrorIs(t, err, ErrQuestionOutOfTurn)

	_, err = env.interviews.Question(ctx, env.candidate.ID, "missing")
	require.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionStats(t *testing.T) {
	env := newTestEnv(t, 3, 2)
	ctx := context.Background()
	id := env.createInterview(t)

	question, err := env.interviews.Start(ctx, env.candidate.ID, id)
	require.NoError(t, err)
	_, err = env.interviews.SubmitAnswer(ctx, env.candidate.ID, id, answerRequest(question.ID))
	require.NoError(t, err)

	stats, err := env.interviews.QuestionStats(ctx, Principal{ID: env.company.ID, Role: RoleCompany}, id)
	require.NoError(t, err)
	require.Equal(t, 5, stats.TotalQuestions)
	require.Equal(t, 3, stats.TechnicalQuestions)
	require.Equal(t, 2, stats.HRQuestions)
	require.Equal(t, 1, stats.AnsweredQuestions)
	require.Equal(t, 20.0, stats.CompletionPercentage)
	require.Equal(t, 5, stats.ByDifficulty["easy"]+stats.ByDifficulty["medium"]+stats.ByDifficulty["hard"])
}

func TestPreviewQuestions(t *testing.T) {
	env := newTestEnv(t, 2, 1)

	items, err := env.interviews.PreviewQuestions(context.Background(), dto.QuestionPreviewRequest{
		JobRole:   "Data Engineer",
		RoundType: "hr",
		Count:     3,
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.NotEmpty(t, items[0].ExpectedKeywords)
	require.Equal(t, SoftSkills, env.oracle.questionReqs[0].Skills)

	var count int64
	require.NoError(t, env.db.Model(&models.Question{}).Count(&count).Error)
	require.Zero(t, count)

	_, err = env.interviews.PreviewQuestions(context.Background(), dto.QuestionPreviewRequest{JobRole: "x", RoundType: "final", Count: 1})
	require.Equal(t, KindValidation, KindOf(err))
}
