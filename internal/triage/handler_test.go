package triage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebow/triage-engine/internal/auth"
	"github.com/carebow/triage-engine/internal/platform/logger"
)

type fakeService struct {
	chatOut    *ChatOutput
	chatErr    error
	analyzeOut *AnalyzeOutput
	analyzeErr error
	session    *DiagnosticSession
	sessionErr error
	ttsErr     error
}

func (s *fakeService) Chat(_ context.Context, _ uuid.UUID, _ ChatInput) (*ChatOutput, error) {
	return s.chatOut, s.chatErr
}

func (s *fakeService) Analyze(_ context.Context, _ uuid.UUID, _ AnalyzeInput) (*AnalyzeOutput, error) {
	return s.analyzeOut, s.analyzeErr
}

func (s *fakeService) GetSession(_ context.Context, _, _ uuid.UUID) (*DiagnosticSession, error) {
	return s.session, s.sessionErr
}

func (s *fakeService) TranscribeAudio(_ context.Context, _ []byte) (string, error) {
	return "transcribed", nil
}

func (s *fakeService) SynthesizeSpeech(_ context.Context, _ string) ([]byte, error) {
	if s.ttsErr != nil {
		return nil, s.ttsErr
	}
	return []byte("mp3"), nil
}

func newTestRouter(svc Service) chi.Router {
	h := NewHandler(svc, logger.NewNop())
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func doRequest(t *testing.T, r chi.Router, method, path, body string, profileID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if profileID != uuid.Nil {
		req = req.WithContext(auth.WithProfileID(req.Context(), profileID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat_OK(t *testing.T) {
	sessionID := uuid.New()
	svc := &fakeService{chatOut: &ChatOutput{
		SessionID: sessionID,
		Turn:      TurnResult{Response: "hello", UrgencyLevel: "self_care", Stage: "greeting"},
	}}
	r := newTestRouter(svc)

	rec := doRequest(t, r, http.MethodPost, "/chat", `{"message": "hello"}`, uuid.New())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != sessionID.String() {
		t.Fatalf("sessionId = %q", resp.SessionID)
	}
	if resp.UrgencyLevel != "self_care" {
		t.Fatalf("urgencyLevel = %q", resp.UrgencyLevel)
	}
}

func TestHandleChat_Unauthenticated(t *testing.T) {
	r := newTestRouter(&fakeService{})
	rec := doRequest(t, r, http.MethodPost, "/chat", `{"message": "hello"}`, uuid.Nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandleChat_ValidationDetails(t *testing.T) {
	r := newTestRouter(&fakeService{})
	rec := doRequest(t, r, http.MethodPost, "/chat", `{"message": "", "personality": "bogus"}`, uuid.New())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Details) < 2 {
		t.Fatalf("expected aggregated details, got %v", resp.Details)
	}
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	r := newTestRouter(&fakeService{})
	rec := doRequest(t, r, http.MethodPost, "/chat", `{not json`, uuid.New())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGetSession_AccessDeniedMasked(t *testing.T) {
	// Missing and foreign sessions get the same status and message.
	for _, sentinel := range []error{ErrNotFound, ErrAccessDenied} {
		r := newTestRouter(&fakeService{sessionErr: sentinel})
		rec := doRequest(t, r, http.MethodGet, "/sessions/"+uuid.NewString(), "", uuid.New())
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status for %v = %d, want 403", sentinel, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "not found or access denied") {
			t.Fatalf("body for %v = %s", sentinel, rec.Body.String())
		}
	}
}

func TestHandleGetSession_InternalErrorIsGeneric(t *testing.T) {
	r := newTestRouter(&fakeService{sessionErr: errors.New("pq: connection refused")})
	rec := doRequest(t, r, http.MethodGet, "/sessions/"+uuid.NewString(), "", uuid.New())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "pq:") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestHandleAnalyze_OK(t *testing.T) {
	assessmentID := uuid.New()
	svc := &fakeService{analyzeOut: &AnalyzeOutput{
		SessionID:    uuid.New(),
		AssessmentID: assessmentID,
		Analysis:     AnalysisResult{Response: "looks routine"},
	}}
	r := newTestRouter(svc)

	rec := doRequest(t, r, http.MethodPost, "/analyze", `{"symptoms": "headache for two days"}`, uuid.New())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.AssessmentID != assessmentID.String() {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleVoice_TTSFailureIsNonFatal(t *testing.T) {
	svc := &fakeService{
		chatOut: &ChatOutput{SessionID: uuid.New(), Turn: TurnResult{Response: "rest up"}},
		ttsErr:  errors.New("elevenlabs 503"),
	}
	r := newTestRouter(svc)

	rec := doRequest(t, r, http.MethodPost, "/voice", `{"message": "I have a headache"}`, uuid.New())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp VoiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AudioBase64 != "" {
		t.Fatalf("audio should be absent when synthesis fails")
	}
	if resp.Response != "rest up" {
		t.Fatalf("text turn missing: %+v", resp)
	}
}

func TestHandleVoice_EmptyMessageIsSilence(t *testing.T) {
	r := newTestRouter(&fakeService{})
	rec := doRequest(t, r, http.MethodPost, "/voice", `{"message": ""}`, uuid.New())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleTTS_RequiresText(t *testing.T) {
	r := newTestRouter(&fakeService{})
	rec := doRequest(t, r, http.MethodPost, "/tts", `{"text": ""}`, uuid.New())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
