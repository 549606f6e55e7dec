package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"studystreak/internal/models"
)

// ErrDisabled is returned when no API key is configured
var ErrDisabled = errors.New("gemini service disabled: no API key configured")

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

// GeminiService generates quiz questions and pet chat replies using the
// Gemini generateContent API
type GeminiService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiService creates a new Gemini client. An empty API key produces a
// disabled service whose calls return ErrDisabled.
func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// IsEnabled returns whether an API key is configured
func (s *GeminiService) IsEnabled() bool {
	return s.apiKey != ""
}

// geminiRequest is the generateContent request payload
type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
}

// geminiResponse is the generateContent response payload
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generatedQuiz is the JSON shape the model is instructed to return
type generatedQuiz struct {
	Questions []models.Question `json:"questions"`
}

// GenerateQuestions asks the model for multiple-choice questions covering
// the given lessons. Question IDs are assigned server-side.
func (s *GeminiService) GenerateQuestions(ctx context.Context, grade string, lessons []models.SubjectLesson, questionsPerSubject int, language string) ([]models.Question, error) {
	if !s.IsEnabled() {
		return nil, ErrDisabled
	}
	if len(lessons) == 0 {
		return nil, errors.New("no lessons to generate questions from")
	}
	if questionsPerSubject <= 0 {
		questionsPerSubject = 3
	}

	prompt := buildQuizPrompt(grade, lessons, questionsPerSubject, language)

	text, err := s.generate(ctx, prompt, &generationConfig{
		ResponseMimeType: "application/json",
		Temperature:      0.7,
	})
	if err != nil {
		return nil, err
	}

	var quiz generatedQuiz
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &quiz); err != nil {
		return nil, fmt.Errorf("failed to parse generated quiz: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return nil, errors.New("model returned no questions")
	}

	questions := make([]models.Question, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if len(q.Options) < 2 || q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			continue
		}
		switch q.Difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		default:
			q.Difficulty = models.DifficultyMedium
		}
		q.ID = uuid.New().String()
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, errors.New("model returned only malformed questions")
	}

	return questions, nil
}

// PetChat generates a short in-character reply from the study pet
func (s *GeminiService) PetChat(ctx context.Context, petName string, petIQ int, message, language string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrDisabled
	}

	prompt := fmt.Sprintf(
		"You are %s, a friendly dinosaur study pet with an IQ of %d. "+
			"Reply to your owner in %s, in at most two short sentences, "+
			"staying playful and encouraging about studying. Owner says: %q",
		petName, petIQ, languageName(language), message,
	)

	text, err := s.generate(ctx, prompt, &generationConfig{Temperature: 0.9})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// generate performs one generateContent call and returns the first
// candidate's text
func (s *GeminiService) generate(ctx context.Context, prompt string, cfg *generationConfig) (string, error) {
	request := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: cfg,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(geminiEndpoint, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("gemini API error: %s", response.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini API returned no candidates")
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}

func buildQuizPrompt(grade string, lessons []models.SubjectLesson, questionsPerSubject int, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a multiple-choice quiz in %s for a %s student.\n", languageName(language), grade)
	fmt.Fprintf(&b, "Generate exactly %d questions per subject, mixing easy, medium and hard difficulties.\n", questionsPerSubject)
	b.WriteString("Subjects and lessons:\n")
	for _, l := range lessons {
		if l.Textbook != "" {
			fmt.Fprintf(&b, "- %s (textbook: %s): %s\n", l.Subject, l.Textbook, l.Lesson)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", l.Subject, l.Lesson)
		}
	}
	b.WriteString(`
Respond with JSON only, matching this shape:
{"questions":[{"subject":"...","questionText":"...","options":["...","...","...","..."],"correctAnswerIndex":0,"explanation":"...","difficulty":"easy|medium|hard"}]}

Each question must have exactly 4 options and a short explanation of the correct answer.`)
	return b.String()
}

func languageName(code string) string {
	switch code {
	case "vi", "":
		return "Vietnamese"
	case "en":
		return "English"
	default:
		return code
	}
}

// stripCodeFence removes a markdown code fence if the model wrapped its
// JSON in one despite the response mime type
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
