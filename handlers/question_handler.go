package handlers

import (
	"math"
	"net/http"
	"strconv"

	"practicetests/middleware"
	"practicetests/services"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questionService *services.QuestionService
	hub             *services.Hub
}

func NewQuestionHandler(questionService *services.QuestionService, hub *services.Hub) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		hub:             hub,
	}
}

func parseQuestionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid question ID")
		return 0, false
	}
	// Well-formed but beyond any stored primary key.
	if id > math.MaxInt64 || uint64(uint(id)) != id {
		respondServiceError(c, services.ErrQuestionNotFound)
		return 0, false
	}
	return uint(id), true
}

func (h *QuestionHandler) publish(eventType string, payload interface{}) {
	if h.hub != nil {
		h.hub.BroadcastQuestionEvent(eventType, payload)
	}
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var filter services.QuestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	questions, err := h.questionService.ListQuestions(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, questions)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, ok := parseQuestionID(c)
	if !ok {
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, question)
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publish(services.EventQuestionCreated, question)

	respondData(c, http.StatusCreated, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := parseQuestionID(c)
	if !ok {
		return
	}

	var req services.QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), questionID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publish(services.EventQuestionUpdated, question)

	respondData(c, http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := parseQuestionID(c)
	if !ok {
		return
	}

	deletedID, err := h.questionService.DeleteQuestion(c.Request.Context(), questionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publish(services.EventQuestionDeleted, gin.H{"id": deletedID})

	respondData(c, http.StatusOK, gin.H{"id": deletedID})
}
