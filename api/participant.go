package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/garnizeh/quizflag/internal/markdown"
	"github.com/garnizeh/quizflag/internal/quiz"
	"github.com/garnizeh/quizflag/pkg/models"
	"github.com/garnizeh/quizflag/pkg/repository"
	"github.com/gorilla/mux"
)

// defaultDescription is shown when a challenge has no description.
const defaultDescription = "You have been assigned to investigate this challenge."

// ParticipantHandler serves the public surface. Its response shapes carry no
// answer or flag fields; a flag only ever appears inside a passing verdict.
type ParticipantHandler struct {
	challengeRepo repository.ChallengeRepo
	questionRepo  repository.QuestionRepo
	renderer      *markdown.Renderer
}

func NewParticipantHandler(cr repository.ChallengeRepo, qr repository.QuestionRepo, renderer *markdown.Renderer) *ParticipantHandler {
	return &ParticipantHandler{challengeRepo: cr, questionRepo: qr, renderer: renderer}
}

type challengeSummary struct {
	Slug               string `json:"slug"`
	Name               string `json:"name"`
	DescriptionPreview string `json:"description_preview"`
	Created            int64  `json:"created_at"`
}

type participantQuestion struct {
	ID           int64  `json:"id"`
	OrderNum     int    `json:"order_num"`
	QuestionHTML string `json:"question_html"`
}

type challengeView struct {
	Slug            string                `json:"slug"`
	Name            string                `json:"name"`
	DescriptionHTML string                `json:"description_html"`
	PassingScore    int                   `json:"passing_score"`
	Questions       []participantQuestion `json:"questions"`
}

func (h *ParticipantHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.challengeRepo.ListChallenges(r.Context(), true)
	if err != nil {
		storeError(w, err)
		return
	}

	out := make([]challengeSummary, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, challengeSummary{
			Slug:               c.Slug,
			Name:               c.Name,
			DescriptionPreview: markdown.PlainText(c.Description),
			Created:            c.Created,
		})
	}

	writeJSON(w, out, http.StatusOK)
}

func (h *ParticipantHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	c, ok := h.activeChallenge(w, r)
	if !ok {
		return
	}

	questions, err := h.questionRepo.ListQuestionsByChallenge(r.Context(), c.ID)
	if err != nil {
		storeError(w, err)
		return
	}

	view := challengeView{
		Slug:            c.Slug,
		Name:            c.Name,
		DescriptionHTML: defaultDescription,
		PassingScore:    c.PassingScore,
		Questions:       make([]participantQuestion, 0, len(questions)),
	}
	if c.Description != "" {
		view.DescriptionHTML = h.renderer.Render(c.Description)
	}
	for _, q := range questions {
		view.Questions = append(view.Questions, participantQuestion{
			ID:           q.ID,
			OrderNum:     q.OrderNum,
			QuestionHTML: h.renderer.Render(q.Question),
		})
	}

	writeJSON(w, view, http.StatusOK)
}

type checkRequest struct {
	Answers map[string]string `json:"answers"`
}

// CheckAnswers evaluates a submission and returns the verdict. The flag is
// included if and only if the submission passes.
func (h *ParticipantHandler) CheckAnswers(w http.ResponseWriter, r *http.Request) {
	c, ok := h.activeChallenge(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validatePayload(r.Context(), checkSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req checkRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	questions, err := h.questionRepo.ListQuestionsByChallenge(r.Context(), c.ID)
	if err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, quiz.Evaluate(c, questions, req.Answers), http.StatusOK)
}

// activeChallenge resolves the slug path variable to an active challenge.
// Inactive challenges are invisible here, same as unknown slugs.
func (h *ParticipantHandler) activeChallenge(w http.ResponseWriter, r *http.Request) (*models.Challenge, bool) {
	slug := mux.Vars(r)["slug"]
	c, err := h.challengeRepo.GetChallengeBySlug(r.Context(), slug)
	if err != nil {
		storeError(w, err)
		return nil, false
	}
	if c == nil || !c.IsActive {
		http.Error(w, "challenge not found", http.StatusNotFound)
		return nil, false
	}
	return c, true
}
