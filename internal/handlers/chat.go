package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"smartair-backend/internal/models"
)

type chatService interface {
	Chat(ctx context.Context, req models.ChatRequest) (string, error)
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(chatService chatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidBody(w, r)
		return
	}

	reply, err := h.chatService.Chat(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}
