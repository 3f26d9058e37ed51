package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/auth"
	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/quiz"
	"github.com/abhisek/edulearn/internal/store"
)

// resetFlags restores every flag of c and its subcommands to its default,
// since the command tree is shared between tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() { resetFlags(rootCmd) })
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "edulearn (devel)\n", out)
}

func TestStatsOffline(t *testing.T) {
	out, err := execute(t, "stats", "--storage", "memory", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "Lessons completed")
	assert.Contains(t, out, "0/11")
	assert.NotContains(t, out, "Server")
}

func TestResetRequiresConfirmation(t *testing.T) {
	_, err := execute(t, "reset", "--storage", "memory", "--offline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestResetClearsProgress(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "edulearn.db")
	ctx := context.Background()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	ps := progress.NewStore(st.KVRepo(), nil)
	rec := progress.NewRecord()
	rec.MarkCompleted(progress.Key("web", 0))
	ps.Save(ctx, progress.LessonsKey, rec)
	require.NoError(t, st.AttemptRepo().Append(ctx, store.AttemptData{AttemptID: "a1", QuizKey: "web:0"}))
	require.NoError(t, st.Close())

	out, err := execute(t, "reset", "--yes", "--history", "--storage", "sqlite", "--db", dbPath, "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress reset.")
	assert.Contains(t, out, "Quiz history deleted.")

	st, err = store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, 0, progress.NewStore(st.KVRepo(), nil).Load(ctx, progress.LessonsKey).CompletedCount())
	attempts, err := st.AttemptRepo().Query(ctx, store.QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestLoginOfflineFails(t *testing.T) {
	_, err := execute(t, "login", "--email", "ada@example.com", "--storage", "memory", "--offline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs the server")
}

func TestPrompterReadsLines(t *testing.T) {
	var prompts bytes.Buffer
	p := &prompter{in: bufio.NewReader(strings.NewReader("ada@example.com\nsecret")), out: &prompts}

	email, err := p.line("Email")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)

	pw, err := p.password("Password")
	require.NoError(t, err)
	assert.Equal(t, "secret", pw, "last line without newline is accepted")
	assert.Equal(t, "Email: Password: ", prompts.String())

	_, err = p.line("Name")
	assert.Error(t, err)
}

func TestAccountError(t *testing.T) {
	verr := &auth.ValidationError{Fields: []auth.FieldError{
		{Field: "email", Reason: "Email is required"},
		{Field: "password", Reason: "Password is required"},
	}}
	assert.EqualError(t, accountError(verr, "x"), "Email is required; Password is required")
	assert.EqualError(t, accountError(errors.New("dial tcp"), "Sign in failed."), "Sign in failed.")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "Python Fund...", clip("Python Fundamentals", 14))
}

// openTestDeps builds deps from root flags the way a subcommand would.
func openTestDeps(t *testing.T, args ...string) *deps {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() { resetFlags(rootCmd) })
	rootCmd.SetContext(context.Background())
	require.NoError(t, rootCmd.ParseFlags(args))

	d, err := openDeps(rootCmd, false)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

// submitServer counts quiz submissions and answers with a fixed score.
func submitServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"result":{"score":1,"percentage":100,"passed":true}}}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

var (
	serverQuiz = quiz.Quiz{ID: "q1", Key: "q1", Title: "Server Quiz", Questions: []quiz.Question{
		{Text: "2+2?", Options: []string{"3", "4"}, CorrectIndex: 1, Points: 1},
	}}
	catalogQuiz = quiz.Quiz{Key: "web:0", Title: "MySQL Basics Quiz", Questions: []quiz.Question{
		{Text: "SELECT?", Options: []string{"read", "write"}, CorrectIndex: 0, Points: 1},
	}}
)

func TestServerQuizzesGradedRemotelyByDefault(t *testing.T) {
	srv, calls := submitServer(t)
	d := openTestDeps(t, "--storage", "memory", "--api", srv.URL+"/api/v1")
	ctx := context.Background()

	res, err := d.scorer().Score(ctx, serverQuiz, []int{1})
	require.NoError(t, err)
	assert.Equal(t, quiz.ModeRemote, res.Mode)
	assert.Equal(t, int32(1), calls.Load())

	res, err = d.scorer().Score(ctx, catalogQuiz, []int{0})
	require.NoError(t, err)
	assert.Equal(t, quiz.ModeLocal, res.Mode, "catalog quizzes stay local")
	assert.Equal(t, int32(1), calls.Load())
}

func TestLocalScoringOptOut(t *testing.T) {
	srv, calls := submitServer(t)
	d := openTestDeps(t, "--storage", "memory", "--api", srv.URL+"/api/v1", "--scoring", "local")

	res, err := d.scorer().Score(context.Background(), serverQuiz, []int{1})
	require.NoError(t, err)
	assert.Equal(t, quiz.ModeLocal, res.Mode)
	assert.Equal(t, 100, res.Percentage)
	assert.Zero(t, calls.Load())
}

func TestOfflineGradesLocally(t *testing.T) {
	d := openTestDeps(t, "--storage", "memory", "--offline")

	res, err := d.scorer().Score(context.Background(), serverQuiz, []int{1})
	require.NoError(t, err)
	assert.Equal(t, quiz.ModeLocal, res.Mode)
}

// signedInDB returns a database path holding a saved session for role.
func signedInDB(t *testing.T, role string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "edulearn.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	tokens := auth.NewTokenStore(st.KVRepo(), nil)
	require.NoError(t, tokens.Save(context.Background(), api.Session{
		Token: "tok-1",
		User:  api.User{ID: "u1", Name: "Grace", Email: "grace@example.com", Role: role},
	}))
	require.NoError(t, st.Close())
	return dbPath
}

func writeQuizFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiz.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const joinsQuiz = `{"lesson":"l9","title":" SQL Joins ","questions":[
	{"questionText":"Combines rows?","options":["WHERE","JOIN",""],"correctOptionIndex":1}
]}`

func TestQuizCreatePublishesDraft(t *testing.T) {
	var got map[string]any
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/quizzes", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"quiz":{"_id":"q9","title":"SQL Joins","lesson":"l9",
			"questions":[{"questionText":"Combines rows?","options":["WHERE","JOIN"],"correctOptionIndex":1,"points":1}]}}}`)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, "quiz", "create", "--file", writeQuizFile(t, joinsQuiz),
		"--storage", "sqlite", "--db", signedInDB(t, "instructor"), "--api", srv.URL+"/api/v1")
	require.NoError(t, err)
	assert.Equal(t, "Quiz created: SQL Joins (q9), 1 questions.\n", out)

	assert.Equal(t, "Bearer tok-1", authHeader)
	assert.Equal(t, "SQL Joins", got["title"])
	assert.EqualValues(t, 70, got["passingScore"])
	assert.Equal(t, true, got["isActive"])
	q := got["questions"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"WHERE", "JOIN"}, q["options"])
	assert.EqualValues(t, 1, q["points"])
}

func TestQuizCreateRejectsInvalidDraft(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	file := writeQuizFile(t, `{"lesson":"l9","title":"Bad","questions":[
		{"questionText":"Pick","options":["a","b"],"correctOptionIndex":2}
	]}`)
	_, err := execute(t, "quiz", "create", "--file", file,
		"--storage", "sqlite", "--db", signedInDB(t, "admin"), "--api", srv.URL+"/api/v1")
	require.Error(t, err)
	assert.Equal(t, "Question 1 correct option must be one of the options", err.Error())
	assert.Zero(t, calls.Load())
}

func TestQuizCreateRefusesLearners(t *testing.T) {
	_, err := execute(t, "quiz", "create", "--file", writeQuizFile(t, joinsQuiz),
		"--storage", "sqlite", "--db", signedInDB(t, "learner"), "--api", "http://127.0.0.1:1/api/v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only instructor and admin")
}

func TestQuizCreateRejectsUnknownFields(t *testing.T) {
	_, err := execute(t, "quiz", "create", "--file", writeQuizFile(t, `{"title":"T","question":[]}`),
		"--storage", "sqlite", "--db", signedInDB(t, "instructor"), "--api", "http://127.0.0.1:1/api/v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode quiz file")
}
