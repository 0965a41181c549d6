package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach-backend/config"
	"interview-coach-backend/internal/domain"
	"interview-coach-backend/internal/interview"
	"interview-coach-backend/internal/repository/kv"
	"interview-coach-backend/internal/usecase"
	"interview-coach-backend/pkg/auth"
	"interview-coach-backend/pkg/kvstore"
	"interview-coach-backend/pkg/security/antivirus"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		GinMode:                      "test",
		FrontendURL:                  "http://localhost:5173",
		JWTSecret:                    "0123456789abcdef0123456789abcdef",
		JWTExpiryHours:               1,
		SessionTTLMinutes:            30,
		RateLimitWindowSeconds:       60,
		RateLimitGlobalThreshold:     1000,
		RateLimitLoginThreshold:      100,
		RateLimitLoginWindowMinutes:  15,
		RateLimitVerifyThreshold:     100,
		RateLimitVerifyWindowMinutes: 60,
		RateLimitScoringThreshold:    1000,
		BotScoreThreshold:            50,
		MaxCVUploadBytes:             1024,
	}
}

type stubScanner struct {
	verdict antivirus.Verdict
}

func (s stubScanner) Name() string { return "stub" }

func (s stubScanner) Ping(context.Context) error { return nil }

func (s stubScanner) Scan(context.Context, []byte) antivirus.Verdict { return s.verdict }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWithScanner(t, nil)
}

func newTestRouterWithScanner(t *testing.T, scanner antivirus.Scanner) *gin.Engine {
	t.Helper()
	return newTestRouterWithStore(t, kvstore.NewMemoryStore(), scanner)
}

func newTestRouterWithStore(t *testing.T, store kvstore.Store, scanner antivirus.Scanner) *gin.Engine {
	t.Helper()
	cfg := testConfig()
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry(), "test")
	require.NoError(t, err)

	return NewRouter(RouterDeps{
		AuthUC:      usecase.NewAuthUsecase(kv.NewUserRepository(store), tokens, store, nil),
		ScoringUC:   usecase.NewScoringUsecase(nil, nil),
		InterviewUC: usecase.NewInterviewUsecase(kv.NewSessionStore(store, cfg.SessionTTL()), nil, interview.DefaultQuestions()),
		HealthUC:    usecase.NewHealthUsecase(nil, store, usecase.HeuristicProvider),
		Tokens:      tokens,
		Scanner:     scanner,
		Config:      cfg,
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept-Language", "en-US")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func login(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var status struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "disabled", status.Components["database"])
	assert.Equal(t, "up", status.Components["session_store"])
}

func TestAuthRoutes(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "Email")

	token := login(t, r, "Jane.Doe@Gmail.com")

	w, env = doJSON(t, r, http.MethodGet, "/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "jane.doe@gmail.com")

	w, _ = doJSON(t, r, http.MethodGet, "/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/v1/auth/verify", "", map[string]string{"token": token})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/v1/auth/verify", "", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScoringRoutes(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/v1/scoring/answer", "", map[string]string{
		"question": "Tell me about a project you led.",
		"answer":   "I led a team of 5 engineers to migrate our Go services to Kubernetes, cutting deploy time by 40%.",
		"job_spec": "Senior Go engineer with Kubernetes experience",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var score struct {
		Score    float64 `json:"score"`
		Feedback string  `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &score))
	assert.Greater(t, score.Score, 0.0)
	assert.LessOrEqual(t, score.Score, 10.0)
	assert.NotEmpty(t, score.Feedback)

	w, _ = doJSON(t, r, http.MethodPost, "/v1/scoring/answer", "", map[string]string{
		"question":    "Why?",
		"answer":      "Because.",
		"personality": "sarcastic",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/v1/scoring/embeddings", "", map[string]interface{}{
		"job_spec": "Go backend engineer",
		"answers": []map[string]string{
			{"question_id": "q1", "question": "Describe your Go experience.", "answer": "Five years building Go APIs."},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var emb struct {
		Fallback    bool   `json:"fallback"`
		Provider    string `json:"provider"`
		PerQuestion []struct {
			QuestionID string `json:"question_id"`
		} `json:"per_question"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &emb))
	assert.True(t, emb.Fallback)
	assert.Equal(t, usecase.HeuristicProvider, emb.Provider)
	require.Len(t, emb.PerQuestion, 1)
	assert.Equal(t, "q1", emb.PerQuestion[0].QuestionID)

	w, _ = doJSON(t, r, http.MethodGet, "/v1/scoring/cv/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func uploadCV(t *testing.T, r *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("cv", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("jobSpec", "Go engineer, PostgreSQL, Redis"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/scoring/cv/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", browserUA)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadCV(t *testing.T) {
	r := newTestRouter(t)

	w := uploadCV(t, r, "cv.txt", []byte("Backend engineer. Go, PostgreSQL and Redis. Led a team of 4."))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = uploadCV(t, r, "cv.pdf", []byte("%PDF-1.7 not really"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadCV(t, r, "cv.txt", []byte{0x25, 0x50, 0x44, 0x46, 0x2d})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadCV(t, r, "cv.txt", bytes.Repeat([]byte("a"), 2048))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadCV_MalwareScan(t *testing.T) {
	cv := []byte("Backend engineer with Go and Redis.")

	r := newTestRouterWithScanner(t, stubScanner{verdict: antivirus.Verdict{Scanner: "stub"}})
	assert.Equal(t, http.StatusOK, uploadCV(t, r, "cv.md", cv).Code)

	r = newTestRouterWithScanner(t, stubScanner{verdict: antivirus.Verdict{Infected: true, Threat: "Eicar", Scanner: "stub"}})
	assert.Equal(t, http.StatusBadRequest, uploadCV(t, r, "cv.md", cv).Code)

	r = newTestRouterWithScanner(t, stubScanner{verdict: antivirus.Verdict{Infected: true, Scanner: "stub", Err: errors.New("dial")}})
	assert.Equal(t, http.StatusServiceUnavailable, uploadCV(t, r, "cv.md", cv).Code)
}

func TestInterviewRoutes(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "candidate@gmail.com")

	w, _ := doJSON(t, r, http.MethodPost, "/v1/interviews", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/v1/interviews", token, map[string]interface{}{
		"job_spec":    "Go backend engineer",
		"personality": "direct",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session struct {
		ID        string `json:"id"`
		State     string `json:"state"`
		Questions []struct {
			Prompt string `json:"prompt"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.ID)
	assert.Equal(t, "in_progress", session.State)

	w, _ = doJSON(t, r, http.MethodGet, "/v1/interviews/"+session.ID+"/report?format=csv", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	other := login(t, r, "someone.else@gmail.com")
	w, _ = doJSON(t, r, http.MethodGet, "/v1/interviews/"+session.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/v1/interviews/"+session.ID+"/answers", token, map[string]string{"answer": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var state string
	for i := 0; i < len(session.Questions); i++ {
		w, env = doJSON(t, r, http.MethodPost, "/v1/interviews/"+session.ID+"/answers", token, map[string]string{
			"answer": "I built a Go service handling 2000 requests per second and reduced latency by 30%.",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res struct {
			State string `json:"state"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &res))
		state = res.State
	}
	assert.Equal(t, "complete", state)

	w, _ = doJSON(t, r, http.MethodPost, "/v1/interviews/"+session.ID+"/answers", token, map[string]string{"answer": "one more"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/v1/interviews/"+session.ID+"/report?format=csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Employability score")

	w, _ = doJSON(t, r, http.MethodGet, "/v1/interviews/"+session.ID+"/report", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	w, _ = doJSON(t, r, http.MethodGet, "/v1/interviews/"+session.ID+"/report?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/v1/interviews/"+session.ID+"/restart", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"state":"in_progress"`)
}

func TestSecurityHeadersAndBots(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("User-Agent", "Googlebot/2.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLogoutClearsCookie(t *testing.T) {
	r := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodPost, "/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.True(t, cookies[0].Expires.Before(time.Now()) || cookies[0].MaxAge < 0)
}

func TestVerificationConfirmMarksUser(t *testing.T) {
	store := kvstore.NewMemoryStore()
	r := newTestRouterWithStore(t, store, nil)
	const email = "jane@company.io"

	w, _ := doJSON(t, r, http.MethodPost, "/v1/auth/verification/request", "", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pending domain.VerificationCode
	require.NoError(t, kvstore.GetJSON(context.Background(), store, "verification:"+email, &pending))

	w, _ = doJSON(t, r, http.MethodPost, "/v1/auth/verification/confirm", "", map[string]string{"email": email, "code": pending.Code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token := login(t, r, email)
	w, env := doJSON(t, r, http.MethodGet, "/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, email, user.Email)
	assert.NotNil(t, user.EmailVerifiedAt)
}
