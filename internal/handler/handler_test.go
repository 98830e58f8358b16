package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appI18n "github.com/studyai/studyai/internal/i18n"
	"github.com/studyai/studyai/internal/model"
	"github.com/studyai/studyai/internal/session"
	"github.com/studyai/studyai/internal/store"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeGen struct {
	subtopics   []string
	explanation string
	quizText    string
	subErr      error
	explainErr  error
	quizErr     error
}

func (f *fakeGen) Subtopics(ctx context.Context, topic string) ([]string, error) {
	return f.subtopics, f.subErr
}

func (f *fakeGen) Explain(ctx context.Context, prompt string) (string, error) {
	return f.explanation, f.explainErr
}

func (f *fakeGen) GenerateQuiz(ctx context.Context, prompt string) (string, error) {
	return f.quizText, f.quizErr
}

func quizText(n int) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"question":"Q%d","options":["a","b","c","d"],"answer":"a","explanation":"because"}`, i+1)
	}
	sb.WriteString("]")
	return sb.String()
}

func newTestServer(t *testing.T, gen *fakeGen, st *store.Store, adminHash []byte) *httptest.Server {
	t.Helper()
	h := New(session.NewManager(gen), gen, st, adminHash)
	r := chi.NewRouter()
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGetSubtopics(t *testing.T) {
	gen := &fakeGen{subtopics: []string{"Trees", "Graphs", "Heaps"}}
	srv := newTestServer(t, gen, nil, nil)

	resp := postJSON(t, srv.URL+"/get_subtopics", map[string]string{"topic": "Data Structures"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string][]string](t, resp)
	assert.Equal(t, []string{model.SubtopicNone, model.SubtopicRandomize, "Trees", "Graphs", "Heaps"}, body["subtopics"])
}

func TestGetSubtopicsEmptyTopic(t *testing.T) {
	srv := newTestServer(t, &fakeGen{}, nil, nil)

	resp := postJSON(t, srv.URL+"/get_subtopics", map[string]string{"topic": "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[map[string]string](t, resp)
	assert.NotEmpty(t, body["error"])
}

func TestGetSubtopicsUpstreamError(t *testing.T) {
	gen := &fakeGen{subErr: fmt.Errorf("model offline")}
	srv := newTestServer(t, gen, nil, nil)

	resp := postJSON(t, srv.URL+"/get_subtopics", map[string]string{"topic": "Physics"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestGenerateExplanation(t *testing.T) {
	gen := &fakeGen{explanation: "Photosynthesis converts light into chemical energy."}
	srv := newTestServer(t, gen, nil, nil)

	resp := postJSON(t, srv.URL+"/generate_explanation", map[string]string{"prompt": "Explain Photosynthesis"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, gen.explanation, body["explanation"])
}

func TestGenerateQuizParsesFencedOutput(t *testing.T) {
	gen := &fakeGen{quizText: "Here you go:\n```json\n" + quizText(3) + "\n```"}
	srv := newTestServer(t, gen, nil, nil)

	resp := postJSON(t, srv.URL+"/generate_quiz", map[string]string{"prompt": "quiz me"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string][]model.QuizQuestion](t, resp)
	require.Len(t, body["quiz"], 3)
	assert.Equal(t, "Q1", body["quiz"][0].Question)
}

func TestGenerateQuizGarbageYieldsEmptyQuiz(t *testing.T) {
	gen := &fakeGen{quizText: "I cannot produce a quiz right now."}
	srv := newTestServer(t, gen, nil, nil)

	resp := postJSON(t, srv.URL+"/generate_quiz", map[string]string{"prompt": "quiz me"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string][]model.QuizQuestion](t, resp)
	require.NotNil(t, body["quiz"])
	assert.Empty(t, body["quiz"])
}

func TestExportSessionPDF(t *testing.T) {
	srv := newTestServer(t, &fakeGen{}, nil, nil)

	payload := map[string]any{
		"session": model.SessionExport{
			Topic:       "World History",
			Subtopic:    "None",
			Difficulty:  "Medium",
			Explanation: "A long time ago.",
			GeneratedAt: "2026-01-02T15:04:05Z",
		},
	}
	resp := postJSON(t, srv.URL+"/export_session_pdf", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "StudyAI_World_History_2026-01-02T15:04:05Z.pdf")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportSessionPDFNoContent(t *testing.T) {
	srv := newTestServer(t, &fakeGen{}, nil, nil)

	resp := postJSON(t, srv.URL+"/export_session_pdf", map[string]any{
		"session": model.SessionExport{Topic: "Empty"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSessionLifecycle(t *testing.T) {
	gen := &fakeGen{
		subtopics:   []string{"Algebra", "Geometry"},
		explanation: "Math is the study of structure.",
		quizText:    quizText(2),
	}
	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := newTestServer(t, gen, st, nil)

	resp := postJSON(t, srv.URL+"/sessions", map[string]string{"topic": "Math"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[model.Session](t, resp)
	require.NotEmpty(t, created.ID)
	base := srv.URL + "/sessions/" + created.ID

	resp = postJSON(t, base+"/subtopics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	subs := decodeBody[map[string][]string](t, resp)
	assert.Len(t, subs["subtopics"], 4)

	resp = postJSON(t, base+"/generate", map[string]string{"subtopic": "Algebra", "difficulty": "Hard"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	generated := decodeBody[model.Session](t, resp)
	require.Len(t, generated.Quiz, 2)
	assert.Equal(t, gen.explanation, generated.Explanation)

	resp = postJSON(t, base+"/answers", map[string]any{"index": 0, "option": "A"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, base+"/answers", map[string]any{"index": 1, "option": "b"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, base+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	submit := decodeBody[struct {
		Session model.Session `json:"session"`
		Message string        `json:"message"`
	}](t, resp)
	graded := submit.Session
	assert.True(t, graded.Revealed)
	assert.Equal(t, 2, graded.ScoreRaw)
	assert.Equal(t, 6, graded.ScoreWeighted)
	assert.Equal(t, "You scored 2 of 2.", submit.Message)

	// answers are frozen once graded
	resp = postJSON(t, base+"/answers", map[string]any{"index": 0, "option": "c"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, base+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reset := decodeBody[model.Session](t, resp)
	assert.False(t, reset.Revealed)
	assert.Empty(t, reset.Answers)
	assert.Len(t, reset.Quiz, 2)

	// graded snapshot reached the history store
	saved, err := st.GetSession(created.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Math", saved.Topic)
}

func TestSessionPDFDownload(t *testing.T) {
	gen := &fakeGen{explanation: "Gravity pulls.", quizText: quizText(1)}
	srv := newTestServer(t, gen, nil, nil)

	resp := postJSON(t, srv.URL+"/sessions", map[string]string{"topic": "Gravity"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[model.Session](t, resp)
	base := srv.URL + "/sessions/" + created.ID

	resp = postJSON(t, base+"/generate", map[string]string{"difficulty": "Easy"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(base + "/pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestSessionNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeGen{}, nil, nil)

	resp := postJSON(t, srv.URL+"/sessions/nope/submit", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGenerateFailureLeavesEmptySession(t *testing.T) {
	gen := &fakeGen{explanation: "fine", quizErr: fmt.Errorf("model offline")}
	srv := newTestServer(t, gen, nil, nil)

	resp := postJSON(t, srv.URL+"/sessions", map[string]string{"topic": "Chemistry"})
	created := decodeBody[model.Session](t, resp)
	base := srv.URL + "/sessions/" + created.ID

	resp = postJSON(t, base+"/generate", map[string]string{"difficulty": "Medium"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	current := decodeBody[model.Session](t, resp)
	assert.Empty(t, current.Explanation)
	assert.Empty(t, current.Quiz)
}

func TestAdminSessions(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)

	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.SaveSession(model.Session{ID: "s1", Topic: "Biology"}))

	srv := newTestServer(t, &fakeGen{}, st, hash)

	resp, err := http.Get(srv.URL + "/admin/sessions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/admin/sessions", nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/admin/sessions", nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "letmein")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]any](t, resp)
	assert.EqualValues(t, 1, body["count"])
}

func TestAdminDisabledWithoutPassword(t *testing.T) {
	srv := newTestServer(t, &fakeGen{}, nil, nil)

	resp, err := http.Get(srv.URL + "/admin/sessions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
