package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyai/studyai/internal/llm/prompts"
	"github.com/studyai/studyai/internal/model"
	"github.com/studyai/studyai/internal/quiz"
)

var (
	// ErrEmptyTopic rejects session creation before any network call is made.
	ErrEmptyTopic = errors.New("topic must not be empty")
	// ErrNotFound means no session exists for the given id.
	ErrNotFound = errors.New("session not found")
	// ErrBusy rejects a generate while a previous one is still in flight.
	ErrBusy = errors.New("generation already in progress")
	// ErrGraded rejects answer changes after the quiz has been revealed.
	ErrGraded = errors.New("session already graded")
)

// Generator produces session content. *llm.Client implements it; tests
// substitute fakes.
type Generator interface {
	Subtopics(ctx context.Context, topic string) ([]string, error)
	Explain(ctx context.Context, prompt string) (string, error)
	GenerateQuiz(ctx context.Context, prompt string) (string, error)
}

// Manager is the exclusive owner of live session state. All mutation goes
// through it; callers only ever see snapshots.
type Manager struct {
	gen Generator

	mu       sync.Mutex
	sessions map[string]*state
}

type state struct {
	model.Session
	busy bool
}

// NewManager creates a Manager backed by the given generator.
func NewManager(gen Generator) *Manager {
	return &Manager{
		gen:      gen,
		sessions: make(map[string]*state),
	}
}

// Create starts a fresh session for a topic.
func (m *Manager) Create(topic string) (model.Session, error) {
	if strings.TrimSpace(topic) == "" {
		return model.Session{}, ErrEmptyTopic
	}

	s := &state{Session: model.Session{
		ID:         uuid.NewString(),
		Topic:      topic,
		Subtopic:   model.SubtopicNone,
		Difficulty: model.DifficultyEasy,
		Answers:    model.AnswerMap{},
	}}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("created session", "id", s.ID, "topic", topic)
	return s.snapshot(), nil
}

// Get returns a snapshot of a session.
func (m *Manager) Get(id string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	return s.snapshot(), nil
}

// FetchSubtopics asks the generator for subtopics of the session's topic and
// stores the sentinel-prefixed, capped list on the session. The current
// subtopic selection resets to None.
func (m *Manager) FetchSubtopics(ctx context.Context, id string) ([]string, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	topic := s.Topic
	m.mu.Unlock()

	subtopics, err := m.gen.Subtopics(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("fetch subtopics: %w", err)
	}
	list := SubtopicList(subtopics)

	m.mu.Lock()
	defer m.mu.Unlock()
	s.Subtopics = list
	s.Subtopic = model.SubtopicNone
	return append([]string(nil), list...), nil
}

// Generate runs the full generation pipeline: clear prior content, resolve
// the subtopic selection (a fresh roll every time), build both prompts, issue
// the explanation and quiz calls concurrently, and set both results together.
// If either call fails nothing is set, and because the session was cleared at
// the start of the attempt the caller is left with an empty session rather
// than the previous one. A generate against a busy session returns ErrBusy
// instead of racing the in-flight one.
func (m *Manager) Generate(ctx context.Context, id, selection string, difficulty model.Difficulty) (model.Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return model.Session{}, ErrNotFound
	}
	if s.busy {
		m.mu.Unlock()
		return model.Session{}, ErrBusy
	}
	s.busy = true
	s.clearContent()
	s.Subtopic = selection
	s.Difficulty = difficulty

	// The resolved subtopic parameterizes the seed but is not written back:
	// a later generate with "Randomize" selected must re-roll.
	seed := prompts.Seed(s.Topic, ResolveSubtopic(selection, s.Subtopics))
	m.mu.Unlock()

	explanationPrompt := prompts.Explanation(seed)
	quizPrompt := prompts.Quiz(seed, difficulty, model.QuestionCount)

	var (
		wg          sync.WaitGroup
		explanation string
		quizText    string
		expErr      error
		quizErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		explanation, expErr = m.gen.Explain(ctx, explanationPrompt)
	}()
	go func() {
		defer wg.Done()
		quizText, quizErr = m.gen.GenerateQuiz(ctx, quizPrompt)
	}()
	wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	s.busy = false

	if expErr != nil {
		return model.Session{}, fmt.Errorf("generate explanation: %w", expErr)
	}
	if quizErr != nil {
		return model.Session{}, fmt.Errorf("generate quiz: %w", quizErr)
	}

	s.Explanation = explanation
	s.Quiz = quiz.ParseText(quizText)
	s.GeneratedAt = time.Now().UTC()
	slog.Info("generated session content", "id", id, "seed", seed, "questions", len(s.Quiz))
	return s.snapshot(), nil
}

// Answer records the user's option pick for one question.
func (m *Manager) Answer(id string, index int, option string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	if s.Revealed {
		return model.Session{}, ErrGraded
	}
	if index < 0 || index >= len(s.Quiz) {
		return model.Session{}, fmt.Errorf("question index %d out of range", index)
	}
	s.Answers[index] = option
	return s.snapshot(), nil
}

// Submit grades the quiz and reveals per-question correctness. The revealed
// flag is one-way within a session: submitting again returns the existing
// grade unchanged.
func (m *Manager) Submit(id string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	if s.Revealed {
		return s.snapshot(), nil
	}

	res := quiz.Score(s.Quiz, s.Answers, s.Difficulty)
	s.ScoreRaw = res.Correct
	s.ScoreWeighted = res.Weighted
	s.Revealed = true
	slog.Info("graded session", "id", id, "correct", res.Correct, "weighted", res.Weighted)
	return s.snapshot(), nil
}

// Reset clears answers, scores, and the revealed flag, keeping the generated
// content in place.
func (m *Manager) Reset(id string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	s.Answers = model.AnswerMap{}
	s.ScoreRaw = 0
	s.ScoreWeighted = 0
	s.Revealed = false
	return s.snapshot(), nil
}

func (s *state) clearContent() {
	s.Explanation = ""
	s.Quiz = nil
	s.Answers = model.AnswerMap{}
	s.ScoreRaw = 0
	s.ScoreWeighted = 0
	s.Revealed = false
	s.GeneratedAt = time.Time{}
}

// snapshot copies the session so callers cannot mutate manager-owned state.
func (s *state) snapshot() model.Session {
	out := s.Session
	out.Subtopics = append([]string(nil), s.Subtopics...)
	out.Quiz = append([]model.QuizQuestion(nil), s.Quiz...)
	out.Answers = make(model.AnswerMap, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	return out
}
