package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/internal/router"
	"github.com/hyperjump/annai/internal/store"
	"github.com/hyperjump/annai/pkg/utils"
)

type chatRequest struct {
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("chat request",
		zap.String("channel", req.Channel),
		zap.Int("message_len", len(req.Message)))

	decision, err := s.router.Route(r.Context(), models.Utterance{
		Raw:      req.Message,
		Language: req.Language,
		Channel:  req.Channel,
		UserHash: utils.HashUser(req.UserID),
	})
	if err != nil {
		if errors.Is(err, router.ErrInputRejected) {
			s.respondError(w, http.StatusBadRequest, router.RejectionMessage)
			return
		}
		s.logger.Error("routing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, decision)
}

type feedbackRequest struct {
	ChatEventID     string `json:"chat_event_id"`
	Rating          int    `json:"rating"`
	Comment         string `json:"comment,omitempty"`
	CorrectedAnswer string `json:"corrected_answer,omitempty"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChatEventID == "" {
		s.respondError(w, http.StatusBadRequest, "chat_event_id is required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		s.respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	fb := &store.Feedback{
		ChatEventID:     req.ChatEventID,
		Rating:          req.Rating,
		Comment:         req.Comment,
		CorrectedAnswer: req.CorrectedAnswer,
	}
	if err := s.store.InsertFeedback(r.Context(), fb); err != nil {
		s.logger.Error("feedback insert failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		s.logger.Error("status: counts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"faq_items":       counts.FAQ,
		"procedures":      counts.Procedures,
		"contacts":        counts.Contacts,
		"timetable_slots": counts.Slots,
		"chat_events":     counts.Events,
	}
	if s.kb != nil {
		n, err := s.kb.DocCount()
		if err == nil {
			resp["kb_documents"] = n
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
