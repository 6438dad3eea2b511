package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt is a provider-neutral completion request.
type Prompt struct {
	Operation string
	System    string
	User      string
}

const systemPrompt = "You are an experienced technical recruiter running structured job interviews. " +
	"Always answer with a single JSON object and no surrounding prose."

func questionPrompt(req QuestionRequest) Prompt {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, "Generate %d %s interview questions for a %s position.\n\n", req.Count, req.Round, req.JobRole)
	builder.WriteString("Candidate skills: ")
	builder.WriteString(strings.Join(req.Skills, ", "))
	builder.WriteString("\n\nRequirements:\n")
	builder.WriteString("- Questions must be relevant to the job role\n")
	builder.WriteString("- Mix easy, medium and hard difficulty\n")
	builder.WriteString("- Focus on practical scenarios\n")
	if req.Round == RoundTechnical {
		builder.WriteString("- Assess programming, problem solving and technical knowledge\n")
	} else {
		builder.WriteString("- Assess soft skills, cultural fit and behaviour\n")
	}
	builder.WriteString("\nReturn JSON with this exact structure:\n")
	builder.WriteString(`{"questions": [{"question": "text", "difficulty": "easy|medium|hard", "expected_keywords": ["keyword"]}]}`)

	return Prompt{Operation: "generate_questions", System: systemPrompt, User: builder.String()}
}

func scorePrompt(req ScoreRequest) Prompt {
	builder := strings.Builder{}
	builder.WriteString("Evaluate this interview answer on a scale of 0-10 for each criterion.\n\n")
	builder.WriteString("Question: ")
	builder.WriteString(req.Question)
	builder.WriteString("\nExpected keywords: ")
	builder.WriteString(strings.Join(req.ExpectedKeywords, ", "))
	builder.WriteString("\nCandidate answer: ")
	builder.WriteString(req.Answer)
	builder.WriteString("\n\nCriteria:\n")
	builder.WriteString("1. accuracy: how correct is the answer\n")
	builder.WriteString("2. relevance: how relevant is it to the question\n")
	builder.WriteString("3. communication: how well is it communicated\n")
	builder.WriteString("4. clarity: how clear and structured is it\n")
	builder.WriteString("5. confidence: how confident does it sound\n")
	builder.WriteString("\nReturn JSON with this exact structure:\n")
	builder.WriteString(`{"accuracy": 7.5, "relevance": 8.0, "communication": 7.0, "clarity": 8.5, "confidence": 7.5, "feedback": "text"}`)

	return Prompt{Operation: "score_answer", System: systemPrompt, User: builder.String()}
}

func reportPrompt(req ReportRequest) Prompt {
	evaluations, err := json.MarshalIndent(req.Evaluations, "", "  ")
	if err != nil {
		evaluations = []byte("[]")
	}

	builder := strings.Builder{}
	builder.WriteString("Write an interview evaluation report.\n\n")
	builder.WriteString("Candidate: ")
	builder.WriteString(req.CandidateName)
	builder.WriteString("\nPosition: ")
	builder.WriteString(req.JobRole)
	builder.WriteString("\n\nQuestion evaluations:\n")
	builder.Write(evaluations)
	builder.WriteString("\n\nCover overall performance, strengths and weaknesses, and a hiring recommendation ")
	builder.WriteString("(Strongly Recommend, Recommend, Maybe, Not Recommend).\n")
	builder.WriteString("\nReturn JSON with this exact structure:\n")
	builder.WriteString(`{"summary": "text", "recommendation": "Strongly Recommend|Recommend|Maybe|Not Recommend"}`)

	return Prompt{Operation: "synthesize_report", System: systemPrompt, User: builder.String()}
}
