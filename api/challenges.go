package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/garnizeh/quizflag/internal/markdown"
	"github.com/garnizeh/quizflag/pkg/models"
	"github.com/garnizeh/quizflag/pkg/repository"
	"github.com/gorilla/mux"
)

// AdminHandler serves the authoring API. Responses here include answers and
// flags; the whole surface sits behind the admin auth middleware.
type AdminHandler struct {
	challengeRepo repository.ChallengeRepo
	questionRepo  repository.QuestionRepo
	renderer      *markdown.Renderer
}

func NewAdminHandler(cr repository.ChallengeRepo, qr repository.QuestionRepo, renderer *markdown.Renderer) *AdminHandler {
	return &AdminHandler{challengeRepo: cr, questionRepo: qr, renderer: renderer}
}

type challengeRequest struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Flag         string `json:"flag"`
	PassingScore int    `json:"passing_score"`
	IsActive     *bool  `json:"is_active"`
}

type questionRequest struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	MatchType string `json:"match_type"`
	OrderNum  *int   `json:"order_num"`
}

func (h *AdminHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.challengeRepo.ListChallenges(r.Context(), false)
	if err != nil {
		storeError(w, err)
		return
	}
	if challenges == nil {
		challenges = []models.Challenge{}
	}
	writeJSON(w, challenges, http.StatusOK)
}

func (h *AdminHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChallenge(w, r)
	if !ok {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	c := &models.Challenge{
		Slug:         req.Slug,
		Name:         req.Name,
		Description:  req.Description,
		Flag:         req.Flag,
		PassingScore: req.PassingScore,
		IsActive:     active,
	}
	id, err := h.challengeRepo.CreateChallenge(r.Context(), c)
	if err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, map[string]int64{"id": id}, http.StatusCreated)
}

func (h *AdminHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.challengeRepo.GetChallengeByID(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	if c == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	questions, err := h.questionRepo.ListQuestionsByChallenge(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	writeJSON(w, map[string]any{"challenge": c, "questions": questions}, http.StatusOK)
}

func (h *AdminHandler) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeChallenge(w, r)
	if !ok {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	c := &models.Challenge{
		ID:           id,
		Slug:         req.Slug,
		Name:         req.Name,
		Description:  req.Description,
		Flag:         req.Flag,
		PassingScore: req.PassingScore,
		IsActive:     active,
	}
	if err := h.challengeRepo.UpdateChallenge(r.Context(), c); err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *AdminHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.challengeRepo.DeleteChallenge(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// CreateQuestion appends one question. When order_num is omitted the
// question goes to the end of the current sequence.
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	challengeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeQuestion(w, r)
	if !ok {
		return
	}

	c, err := h.challengeRepo.GetChallengeByID(r.Context(), challengeID)
	if err != nil {
		storeError(w, err)
		return
	}
	if c == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	orderNum := 0
	if req.OrderNum != nil {
		orderNum = *req.OrderNum
	} else {
		existing, err := h.questionRepo.ListQuestionsByChallenge(r.Context(), challengeID)
		if err != nil {
			storeError(w, err)
			return
		}
		orderNum = len(existing) + 1
	}

	q := &models.Question{
		ChallengeID: challengeID,
		OrderNum:    orderNum,
		Question:    req.Question,
		Answer:      req.Answer,
		MatchType:   models.MatchType(req.MatchType),
	}
	id, err := h.questionRepo.CreateQuestion(r.Context(), q)
	if err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, map[string]any{"id": id, "order_num": orderNum}, http.StatusCreated)
}

func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeQuestion(w, r)
	if !ok {
		return
	}

	orderNum := 0
	if req.OrderNum != nil {
		orderNum = *req.OrderNum
	}
	q := &models.Question{
		ID:        id,
		OrderNum:  orderNum,
		Question:  req.Question,
		Answer:    req.Answer,
		MatchType: models.MatchType(req.MatchType),
	}
	if err := h.questionRepo.UpdateQuestion(r.Context(), q); err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.questionRepo.DeleteQuestion(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

type bulkSaveRequest struct {
	Questions []models.QuestionInput `json:"questions"`
}

type bulkSaveResponse struct {
	CreatedIDs []int64 `json:"created_ids"`
}

// BulkSaveQuestions replaces the challenge's entire question set in one
// atomic reconciliation (create/update/delete diff against stored state).
func (h *AdminHandler) BulkSaveQuestions(w http.ResponseWriter, r *http.Request) {
	challengeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validatePayload(r.Context(), bulkSaveSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req bulkSaveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	c, err := h.challengeRepo.GetChallengeByID(r.Context(), challengeID)
	if err != nil {
		storeError(w, err)
		return
	}
	if c == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	createdIDs, err := h.questionRepo.BulkSaveQuestions(r.Context(), challengeID, req.Questions)
	if err != nil {
		storeError(w, err)
		return
	}
	if createdIDs == nil {
		createdIDs = []int64{}
	}

	writeJSON(w, bulkSaveResponse{CreatedIDs: createdIDs}, http.StatusOK)
}

type previewRequest struct {
	Markdown string `json:"markdown"`
}

// Preview renders markdown for the authoring UI's live preview pane.
func (h *AdminHandler) Preview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validatePayload(r.Context(), previewSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req previewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]string{"html": h.renderer.Render(req.Markdown)}, http.StatusOK)
}

func decodeChallenge(w http.ResponseWriter, r *http.Request) (challengeRequest, bool) {
	var req challengeRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return req, false
	}
	if err := validatePayload(r.Context(), challengeSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func decodeQuestion(w http.ResponseWriter, r *http.Request) (questionRequest, bool) {
	var req questionRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return req, false
	}
	if err := validatePayload(r.Context(), questionSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
