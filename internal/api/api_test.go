package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vocabuddy/progress/internal/api"
	"github.com/vocabuddy/progress/internal/assistant"
	"github.com/vocabuddy/progress/internal/auth"
	"github.com/vocabuddy/progress/internal/catalog"
	"github.com/vocabuddy/progress/internal/ledger"
	"github.com/vocabuddy/progress/internal/models"
	"github.com/vocabuddy/progress/internal/repository"
	"github.com/vocabuddy/progress/internal/repository/sqlite"
	"github.com/vocabuddy/progress/internal/session"
	"github.com/vocabuddy/progress/internal/stores"
	"github.com/vocabuddy/progress/internal/testutil"
	"github.com/vocabuddy/progress/internal/testutil/mocks"
)

const testSecret = "api-test-secret-0123456789"

type APISuite struct {
	suite.Suite
	server    *api.Server
	handler   http.Handler
	mirror    *mocks.MockRemoteMirror
	queue     *mocks.MockJobQueue
	assistant *mocks.MockAssistant
	pushLog   repository.PushLog
	verifier  *auth.Verifier
	cancel    context.CancelFunc
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	t := s.T()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	local := sqlite.NewLocalStore(db)
	s.pushLog = sqlite.NewPushLog(db)
	s.mirror = new(mocks.MockRemoteMirror)
	s.queue = new(mocks.MockJobQueue)
	s.queue.On("EnqueuePush", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.assistant = new(mocks.MockAssistant)

	pusher := session.NewPusher(s.queue)
	l := ledger.New(local, pusher)
	builtin, err := catalog.Exercises()
	require.NoError(t, err)

	words := stores.NewWordStore(local, l, pusher)
	exercises := stores.NewExerciseStore(local, l, pusher, builtin)
	games := stores.NewGameStore(local, l, pusher)
	calendar := stores.NewCalendarStore(local, l, pusher)
	sess := session.New(pusher, s.mirror, l, []stores.Syncable{words, exercises, games, calendar}, time.Second)

	events := auth.NewEvents()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	sess.Listen(ctx, events)

	s.verifier = auth.NewVerifier(testSecret, "vocabuddy")
	s.server = &api.Server{
		DB:        db,
		Ledger:    l,
		Words:     words,
		Exercises: exercises,
		Games:     games,
		Calendar:  calendar,
		Session:   sess,
		Events:    events,
		Verifier:  s.verifier,
		PushLog:   s.pushLog,
		Assistant: s.assistant,
	}
	s.handler = s.server.Routes()
}

func (s *APISuite) TearDownTest() {
	s.cancel()
}

func (s *APISuite) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *APISuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	s.decode(rec, &body)
	return body.Error.Code
}

func (s *APISuite) TestHealthAndReady() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("OK", rec.Body.String())
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestProfileDefaultsAndUpdate() {
	rec := s.do(http.MethodGet, "/profile", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var got struct {
		Profile         models.Profile          `json:"profile"`
		CurrentLanguage string                  `json:"currentLanguage"`
		CurrentLevel    models.ProficiencyLevel `json:"currentLevel"`
	}
	s.decode(rec, &got)
	s.Equal(catalog.DefaultSelection(), got.Profile.SelectedLanguages)
	s.Equal(10, got.Profile.DailyWordGoal)
	s.Equal("en", got.CurrentLanguage)
	s.Equal(models.LevelA1, got.CurrentLevel)

	rec = s.do(http.MethodPatch, "/profile", map[string]any{"dailyWordGoal": 0})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	rec = s.do(http.MethodPatch, "/profile", map[string]any{"name": "Ana", "dailyWordGoal": 20})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &got)
	s.Equal("Ana", got.Profile.Name)
	s.Equal(20, got.Profile.DailyWordGoal)

	rec = s.do(http.MethodPut, "/profile/current-level", map[string]any{"level": "Z9"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/profile/current-language", map[string]any{"languageId": "de"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &got)
	s.Equal("de", got.CurrentLanguage)
}

func (s *APISuite) TestRejectsUnknownBodyFields() {
	rec := s.do(http.MethodPatch, "/profile", map[string]any{"nickname": "x"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("BAD_REQUEST", s.errorCode(rec))
}

func (s *APISuite) TestToggleKeepsLastLanguage() {
	for _, id := range []string{"fr", "de", "es", "it", "en"} {
		rec := s.do(http.MethodPost, "/profile/languages/"+id+"/toggle", nil)
		s.Require().Equal(http.StatusOK, rec.Code, id)
	}
	var got struct {
		Profile models.Profile `json:"profile"`
	}
	s.decode(s.do(http.MethodGet, "/profile", nil), &got)
	s.Equal([]string{"en"}, got.Profile.SelectedLanguages)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/profile/languages/xx/toggle", nil).Code)
}

func (s *APISuite) TestWordLifecycleUpdatesStats() {
	rec := s.do(http.MethodPost, "/words", map[string]any{
		"word": "house", "translation": "ev", "languageId": "en", "proficiencyLevel": "A1",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var word models.Word
	s.decode(rec, &word)
	s.NotEmpty(word.ID)

	rec = s.do(http.MethodGet, "/stats/en", nil)
	var stat models.LanguageStat
	s.decode(rec, &stat)
	s.Equal(1, stat.WordsLearned)

	rec = s.do(http.MethodGet, "/achievements/first-word", nil)
	var ach models.Achievement
	s.decode(rec, &ach)
	s.True(ach.IsUnlocked)

	rec = s.do(http.MethodGet, "/words?languageId=en&level=A1", nil)
	var words []models.Word
	s.decode(rec, &words)
	s.Len(words, 1)

	rec = s.do(http.MethodGet, "/words?q=hou", nil)
	s.decode(rec, &words)
	s.Len(words, 1)

	rec = s.do(http.MethodPost, "/words/"+word.ID+"/review", map[string]any{"correct": true})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &word)
	s.Equal(1, word.ReviewCount)

	rec = s.do(http.MethodPatch, "/words/"+word.ID, map[string]any{"isLearned": true})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/words/learned-count?languageId=en", nil)
	var count map[string]int
	s.decode(rec, &count)
	s.Equal(1, count["count"])

	rec = s.do(http.MethodGet, "/profile/daily-goal?languageId=en", nil)
	var goal ledger.DailyGoal
	s.decode(rec, &goal)
	s.Equal(1, goal.Learned)
	s.InDelta(0.1, goal.Progress, 1e-9)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/words/"+word.ID, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/words/"+word.ID, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/words/"+word.ID, nil).Code)
}

func (s *APISuite) TestAddWordValidation() {
	rec := s.do(http.MethodPost, "/words", map[string]any{"word": "", "languageId": "en"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))
}

func (s *APISuite) TestExercises() {
	rec := s.do(http.MethodGet, "/exercises?languageId=en&level=A1&type=wordTranslation", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var exercises []models.Exercise
	s.decode(rec, &exercises)
	s.Require().NotEmpty(exercises)

	id := exercises[0].ID
	rec = s.do(http.MethodPost, "/exercises/"+id+"/complete", map[string]any{"correct": true})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/exercises/"+id+"/result", nil)
	var result struct {
		Completed bool  `json:"completed"`
		Correct   *bool `json:"correct"`
	}
	s.decode(rec, &result)
	s.True(result.Completed)
	s.Require().NotNil(result.Correct)
	s.True(*result.Correct)

	rec = s.do(http.MethodGet, "/exercises/progress?languageId=en", nil)
	var progress struct {
		CompletedCount int     `json:"completedCount"`
		SuccessRate    float64 `json:"successRate"`
	}
	s.decode(rec, &progress)
	s.Equal(1, progress.CompletedCount)
	s.Equal(1.0, progress.SuccessRate)

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/exercises/missing/complete", map[string]any{"correct": true}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/exercises?languageId=en&type=bogus", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/exercises", nil).Code)

	rec = s.do(http.MethodPost, "/exercises/reset", map[string]any{"languageId": "en", "level": "A1"})
	var removed map[string]int
	s.decode(rec, &removed)
	s.Equal(1, removed["removed"])
}

func (s *APISuite) TestGames() {
	rec := s.do(http.MethodGet, "/games/stats?gameType=wordMatching", nil)
	var stats struct {
		AverageScore float64 `json:"averageScore"`
		TotalPlayed  int     `json:"totalPlayed"`
	}
	s.decode(rec, &stats)
	s.Zero(stats.AverageScore)

	for _, score := range []int{8, 4} {
		rec = s.do(http.MethodPost, "/games/results", map[string]any{
			"gameType": "wordMatching", "languageId": "en", "score": score, "totalQuestions": 10, "timeSpent": 30,
		})
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/games/stats?languageId=en", nil)
	s.decode(rec, &stats)
	s.InDelta(0.6, stats.AverageScore, 1e-9)
	s.Equal(2, stats.TotalPlayed)

	rec = s.do(http.MethodGet, "/games/results?languageId=en&gameType=timedChallenge", nil)
	var results []models.GameResult
	s.decode(rec, &results)
	s.Empty(results)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/games/stats", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/games/results", map[string]any{
		"gameType": "wordMatching", "languageId": "en", "score": 11, "totalQuestions": 10,
	}).Code)
}

func (s *APISuite) TestCalendar() {
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	rec := s.do(http.MethodPost, "/calendar/events", map[string]any{"title": "Review", "startDate": start})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var event models.CalendarEvent
	s.decode(rec, &event)

	rec = s.do(http.MethodGet, "/calendar/events/upcoming", nil)
	var events []models.CalendarEvent
	s.decode(rec, &events)
	s.Len(events, 1)

	rec = s.do(http.MethodGet, "/calendar/events?date="+start.Format("2006-01-02"), nil)
	s.decode(rec, &events)
	s.Len(events, 1)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/calendar/events?date=tomorrow", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/calendar/events", map[string]any{"title": "No date"}).Code)

	rec = s.do(http.MethodPost, "/calendar/events/"+event.ID+"/complete", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &event)
	s.True(event.IsCompleted)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/calendar/events/"+event.ID, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/calendar/events/"+event.ID, nil).Code)
}

func (s *APISuite) TestSessionSignInAndOut() {
	s.mirror.On("ReadDocument", mock.Anything, "u-1").Return(nil, nil)
	s.mirror.On("WriteDocument", mock.Anything, "u-1", mock.Anything).Return(nil)

	rec := s.do(http.MethodPost, "/session", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/session", nil, "Authorization", "Bearer not-a-token")
	s.Equal(http.StatusUnauthorized, rec.Code)

	token, err := s.verifier.Issue(auth.Identity{UserID: "u-1", Name: "Ana"}, time.Hour)
	s.Require().NoError(err)
	rec = s.do(http.MethodPost, "/session", nil, "Authorization", "Bearer "+token)
	s.Equal(http.StatusAccepted, rec.Code)

	s.Eventually(func() bool {
		var st session.Status
		s.decode(s.do(http.MethodGet, "/session", nil), &st)
		return st.State == "hydrated"
	}, time.Second, 5*time.Millisecond)

	s.Require().NoError(s.pushLog.Record(context.Background(), repository.PushRecord{
		UserID: "u-1", FieldPath: "words", Status: repository.PushStatusOK, PushedAt: time.Now().UTC(),
	}))
	rec = s.do(http.MethodGet, "/session/pushes", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var pushes []repository.PushRecord
	s.decode(rec, &pushes)
	s.Len(pushes, 1)

	s.Equal(http.StatusAccepted, s.do(http.MethodDelete, "/session", nil).Code)
	s.Eventually(func() bool {
		var st session.Status
		s.decode(s.do(http.MethodGet, "/session", nil), &st)
		return st.State == "signedOut"
	}, time.Second, 5*time.Millisecond)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/session/pushes", nil).Code)
}

func (s *APISuite) TestSignInWithoutVerifier() {
	s.server.Verifier = nil
	rec := s.do(http.MethodPost, "/session", nil, "Authorization", "Bearer x")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *APISuite) TestAssistant() {
	s.assistant.On("Enabled").Return(true)
	s.assistant.On("Translate", mock.Anything, "house", "", "en").Return("ev", nil)
	s.assistant.On("Chat", mock.Anything, "fr", []assistant.Message(nil), "salut").Return("Bonjour", nil)

	rec := s.do(http.MethodPost, "/assistant/translate", map[string]any{"text": "house"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var out map[string]string
	s.decode(rec, &out)
	s.Equal("ev", out["translation"])

	rec = s.do(http.MethodPost, "/assistant/chat", map[string]any{"language": "fr", "text": "salut"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &out)
	s.Equal("Bonjour", out["reply"])
}

func (s *APISuite) TestAssistantDisabled() {
	s.assistant.On("Enabled").Return(false)
	rec := s.do(http.MethodPost, "/assistant/translate", map[string]any{"text": "house"})
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("UNAVAILABLE", s.errorCode(rec))
}
