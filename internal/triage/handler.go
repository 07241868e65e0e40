package triage

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/carebow/triage-engine/internal/auth"
	"github.com/carebow/triage-engine/internal/platform/logger"
)

const maxAudioUploadBytes = 10 << 20

type Handler struct {
	svc Service
	log *logger.Logger
}

func NewHandler(svc Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type ChatRequest struct {
	SessionID           string      `json:"sessionId,omitempty"`
	Message             string      `json:"message"`
	Personality         string      `json:"personality,omitempty"`
	Tone                string      `json:"tone,omitempty"`
	ConversationHistory []Message   `json:"conversationHistory,omitempty"`
	UserContext         UserContext `json:"userContext,omitempty"`
}

type ChatResponse struct {
	SessionID string `json:"sessionId"`
	TurnResult
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ValidateChatInput(req.Message, req.Personality, req.Tone, req.UserContext); err != nil {
		writeValidationError(w, err)
		return
	}

	profileID, ok := auth.ProfileID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	sessionID, ok := parseOptionalID(req.SessionID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}
	personality, _ := ParsePersonality(req.Personality)

	out, err := h.svc.Chat(r.Context(), profileID, ChatInput{
		SessionID:   sessionID,
		Message:     req.Message,
		Personality: personality,
		Profile:     req.UserContext,
	})
	if err != nil {
		h.writeServiceError(w, "chat turn failed", err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{SessionID: out.SessionID.String(), TurnResult: out.Turn})
}

type AnalyzeRequest struct {
	SessionID           string      `json:"sessionId,omitempty"`
	Symptoms            string      `json:"symptoms"`
	ConversationHistory []Message   `json:"conversationHistory,omitempty"`
	UserContext         UserContext `json:"userContext,omitempty"`
}

type AnalyzeResponse struct {
	Success      bool           `json:"success"`
	SessionID    string         `json:"sessionId"`
	AssessmentID string         `json:"assessmentId,omitempty"`
	Analysis     AnalysisResult `json:"analysis"`
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ValidateAnalyzeInput(req.Symptoms, req.UserContext); err != nil {
		writeValidationError(w, err)
		return
	}

	profileID, ok := auth.ProfileID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	sessionID, ok := parseOptionalID(req.SessionID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	out, err := h.svc.Analyze(r.Context(), profileID, AnalyzeInput{
		SessionID: sessionID,
		Symptoms:  req.Symptoms,
		History:   req.ConversationHistory,
		Profile:   req.UserContext,
	})
	if err != nil {
		h.writeServiceError(w, "symptom analysis failed", err)
		return
	}

	resp := AnalyzeResponse{
		Success:   true,
		SessionID: out.SessionID.String(),
		Analysis:  out.Analysis,
	}
	if out.AssessmentID != uuid.Nil {
		resp.AssessmentID = out.AssessmentID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	profileID, ok := auth.ProfileID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	session, err := h.svc.GetSession(r.Context(), profileID, sessionID)
	if err != nil {
		h.writeServiceError(w, "session fetch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type VoiceRequest struct {
	SessionID   string      `json:"sessionId,omitempty"`
	Message     string      `json:"message"`
	Personality string      `json:"personality,omitempty"`
	Tone        string      `json:"tone,omitempty"`
	UserContext UserContext `json:"userContext,omitempty"`
}

type VoiceResponse struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
	TurnResult
	AudioBase64 string `json:"audio_base64,omitempty"`
}

// HandleVoice accepts either a JSON body with a message or a multipart form
// with an audio file to transcribe, runs a normal chat turn and synthesizes
// the reply. TTS failure is non-fatal: the text payload still goes out.
func (h *Handler) HandleVoice(w http.ResponseWriter, r *http.Request) {
	profileID, ok := auth.ProfileID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req VoiceRequest
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		file, _, err := r.FormFile("audio")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Audio file required")
			return
		}
		defer file.Close()
		audio, err := io.ReadAll(io.LimitReader(file, maxAudioUploadBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read audio file")
			return
		}
		text, err := h.svc.TranscribeAudio(r.Context(), audio)
		if err != nil {
			h.log.Error("transcription failed", "error", err)
			writeError(w, http.StatusBadGateway, "Transcription unavailable")
			return
		}
		req.SessionID = r.FormValue("sessionId")
		req.Personality = r.FormValue("personality")
		req.Tone = r.FormValue("tone")
		req.Message = text
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if req.Message == "" {
		// Silence or no speech detected.
		writeJSON(w, http.StatusOK, VoiceResponse{Text: ""})
		return
	}
	if err := ValidateChatInput(req.Message, req.Personality, req.Tone, req.UserContext); err != nil {
		writeValidationError(w, err)
		return
	}

	sessionID, ok := parseOptionalID(req.SessionID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return
	}
	personality, _ := ParsePersonality(req.Personality)

	out, err := h.svc.Chat(r.Context(), profileID, ChatInput{
		SessionID:   sessionID,
		Message:     req.Message,
		Personality: personality,
		Profile:     req.UserContext,
	})
	if err != nil {
		h.writeServiceError(w, "voice turn failed", err)
		return
	}

	resp := VoiceResponse{
		SessionID:  out.SessionID.String(),
		Text:       req.Message,
		TurnResult: out.Turn,
	}
	if audio, err := h.svc.SynthesizeSpeech(r.Context(), out.Turn.Response); err != nil {
		h.log.Warn("speech synthesis failed", "error", err)
	} else {
		resp.AudioBase64 = base64.StdEncoding.EncodeToString(audio)
	}
	writeJSON(w, http.StatusOK, resp)
}

type TTSRequest struct {
	Text string `json:"text"`
}

func (h *Handler) HandleTTS(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	audio, err := h.svc.SynthesizeSpeech(r.Context(), req.Text)
	if err != nil {
		h.log.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusBadGateway, "Speech synthesis unavailable")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(audio)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccessDenied) {
		writeError(w, http.StatusForbidden, "Session not found or access denied")
		return
	}
	// Internal detail stays in the logs; the client gets a generic message.
	h.log.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "An error occurred during processing")
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chat", h.HandleChat)
	r.Post("/analyze", h.HandleAnalyze)
	r.Post("/voice", h.HandleVoice)
	r.Post("/tts", h.HandleTTS)
	r.Get("/sessions/{id}", h.HandleGetSession)
}

func parseOptionalID(s string) (uuid.UUID, bool) {
	if s == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 19 && ct[:19] == "multipart/form-data"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var details []string
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			details = append(details, e.Error())
		}
	} else {
		details = append(details, err.Error())
	}
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "Invalid input",
		"details": details,
	})
}
