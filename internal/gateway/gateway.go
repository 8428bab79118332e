// Package gateway exposes the conversation pipeline over a small JSON API.
// It is the only surface the chat UI talks to.
package gateway

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/m0shaban/ai-virtual-teacher/internal/audioio"
	"github.com/m0shaban/ai-virtual-teacher/internal/pipeline"
	"github.com/m0shaban/ai-virtual-teacher/internal/prompt"
	"github.com/m0shaban/ai-virtual-teacher/internal/registry"
)

type Server struct {
	pipeline *pipeline.Pipeline
	catalog  *registry.Catalog
	logger   *slog.Logger
}

func New(p *pipeline.Pipeline, catalog *registry.Catalog, logger *slog.Logger) *Server {
	return &Server{
		pipeline: p,
		catalog:  catalog,
		logger:   logger.With(slog.String("component", "gateway")),
	}
}

// Register mounts the API on the runtime mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("POST /api/model", s.handleSwitchModel)
	mux.HandleFunc("POST /api/turn", s.handleTurn)
	mux.HandleFunc("POST /api/speech", s.handleSpeech)
	mux.HandleFunc("POST /api/clear", s.handleClear)
	mux.HandleFunc("GET /api/history", s.handleHistory)
}

type modelsResponse struct {
	Models []string `json:"models"`
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, modelsResponse{Models: s.catalog.Labels()})
}

type switchModelRequest struct {
	Label string `json:"label"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleSwitchModel(w http.ResponseWriter, r *http.Request) {
	var req switchModelRequest
	if !s.decode(w, r, &req) {
		return
	}
	status := s.pipeline.SwitchModel(r.Context(), req.Label)
	s.writeJSON(w, http.StatusOK, statusResponse{Status: status})
}

type turnRequest struct {
	Text       string `json:"text"`
	Role       string `json:"role"`
	Language   string `json:"language"`
	Audio      string `json:"audio,omitempty"` // base64 little-endian 16-bit PCM, mono
	SampleRate int    `json:"sample_rate,omitempty"`
}

type turnResponse struct {
	History []pipeline.Turn `json:"history"`
	Reply   string          `json:"reply"`
	Status  string          `json:"status"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if !s.decode(w, r, &req) {
		return
	}

	in := pipeline.TurnInput{
		Text:     req.Text,
		Role:     prompt.ParseRole(req.Role),
		Language: prompt.ParseLanguage(req.Language),
	}
	if req.Audio != "" {
		if req.SampleRate < 0 {
			s.writeJSON(w, http.StatusBadRequest, statusResponse{Status: "invalid sample rate"})
			return
		}
		pcm, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, statusResponse{Status: "invalid audio encoding"})
			return
		}
		in.Samples = audioio.DecodePCM16(pcm)
		in.SampleRate = req.SampleRate
		if in.SampleRate == 0 {
			in.SampleRate = 16000
		}
	}

	res := s.pipeline.SubmitTurn(r.Context(), in)
	s.writeJSON(w, http.StatusOK, turnResponse{History: res.History, Reply: res.Reply, Status: res.Status})
}

type speechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type speechResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if !s.decode(w, r, &req) {
		return
	}
	res := s.pipeline.SynthesizeReply(r.Context(), req.Text, prompt.ParseLanguage(req.Language))
	s.writeJSON(w, http.StatusOK, speechResponse{Status: res.Status, Path: res.Path})
}

type historyResponse struct {
	History []pipeline.Turn `json:"history"`
	Status  string          `json:"status,omitempty"`
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	history := s.pipeline.Clear()
	s.writeJSON(w, http.StatusOK, historyResponse{
		History: history,
		Status:  "Conversation cleared. Start a new conversation!",
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	history := s.pipeline.History()
	if history == nil {
		history = []pipeline.Turn{}
	}
	s.writeJSON(w, http.StatusOK, historyResponse{History: history})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		s.writeJSON(w, http.StatusBadRequest, statusResponse{Status: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}
