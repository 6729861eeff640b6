package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/testutil"
)

// TestAliceScenario walks through a full session: register, ask, get an answer, accept it.
func TestAliceScenario(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	// alice registers
	req, rec := newRequest(http.MethodPost, "/api/register",
		[]byte(`{"username": "alice", "email": "alice@example.com", "password": "`+pwd+`"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	aliceCookie := sessionCookie(rec).Value

	// alice asks a Mathematics question; the body cannot forge counters or authorship
	req, rec = newAuthRequest(http.MethodPost, "/api/questions", aliceCookie,
		[]byte(`{"subjectId": 2, "title": "What is a limit?", "description": "Explain epsilon-delta", "userId": 99, "answersCount": 7}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var q question.Question
	unmarshal(t, rec, &q)
	assert.Equal(t, 2, q.SubjectID)
	assert.Zero(t, q.AnswersCount)
	assert.False(t, q.IsResolved)

	alice, err := app.usrRepo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, q.UserID)
	assert.Equal(t, 1, alice.TotalQuestions)

	// bob answers
	bob := testutil.CreateUser(t, app.usrRepo, "bob", "bob@example.com", pwd)
	bobCookie := app.login(t, bob)
	req, rec = newAuthRequest(http.MethodPost, "/api/questions/"+strconv.Itoa(q.ID)+"/answers", bobCookie,
		[]byte(`{"content": "A value a function approaches."}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a question.Answer
	unmarshal(t, rec, &a)
	assert.Equal(t, bob.ID, a.UserID)
	assert.Equal(t, q.ID, a.QuestionID)

	q, err = app.questionRepo.GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, q.AnswersCount)

	// the feed shows both events, newest first
	req, rec = newRequest(http.MethodGet, "/api/activities")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var acts []activity.Activity
	unmarshal(t, rec, &acts)
	require.Len(t, acts, 2)
	assert.Equal(t, activity.TypeAnswerGiven, acts[0].Type)
	assert.Equal(t, activity.TypeQuestionAsked, acts[1].Type)
	assert.Equal(t, "Asked a question: What is a limit?", acts[1].Description)

	// bob cannot accept his own answer on alice's question
	acceptPath := "/api/answers/" + strconv.Itoa(a.ID) + "/accept"
	req, rec = newAuthRequest(http.MethodPost, acceptPath, bobCookie)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// alice accepts it
	req, rec = newAuthRequest(http.MethodPost, acceptPath, aliceCookie)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &a)
	assert.True(t, a.IsAccepted)

	bob, err = app.usrRepo.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, question.AcceptedAnswerPoints, bob.RewardPoints)
	assert.Equal(t, 1, bob.TotalAnswers)

	q, err = app.questionRepo.GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, q.IsResolved)

	// dashboard
	req, rec = newAuthRequest(http.MethodGet, "/api/dashboard", aliceCookie)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		RecentQuestions  []question.Question      `json:"recentQuestions"`
		RecentActivities []activity.Activity      `json:"recentActivities"`
		OnlineUsers      []map[string]interface{} `json:"onlineUsers"`
	}
	unmarshal(t, rec, &dash)
	assert.Equal(t, "alice", dash.User.Username)
	assert.Len(t, dash.RecentQuestions, 1)
	assert.Len(t, dash.RecentActivities, 2)
	assert.Len(t, dash.OnlineUsers, 2)
}

// TestAnswerOwnQuestion registers, logs in, asks and answers in one go.
func TestAnswerOwnQuestion(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	req, rec := newRequest(http.MethodPost, "/api/register",
		[]byte(`{"username": "alice", "email": "alice@example.com", "password": "secret1"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req, rec = newRequest(http.MethodPost, "/api/login", []byte(`{"username": "alice", "password": "secret1"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)

	req, rec = newAuthRequest(http.MethodPost, "/api/questions", cookie.Value,
		[]byte(`{"subjectId": 1, "title": "Why does X happen?", "description": "Detailed body text here."}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var q question.Question
	unmarshal(t, rec, &q)
	assert.Zero(t, q.AnswersCount)
	assert.False(t, q.IsResolved)

	req, rec = newAuthRequest(http.MethodPost, "/api/questions/"+strconv.Itoa(q.ID)+"/answers", cookie.Value,
		[]byte(`{"content": "Because of Y."}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	q, err := app.questionRepo.GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, q.AnswersCount)
	alice, err := app.usrRepo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.TotalAnswers)
	assert.Equal(t, 1, alice.TotalQuestions)
}

func TestCreateQuestion(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, app.usrRepo, "alice", "alice@example.com", pwd)
	cookie := app.login(t, usr)

	tests := []httpTest{
		{
			name:     "unauthenticated",
			method:   http.MethodPost,
			path:     "/api/questions",
			body:     []byte(`{"subjectId": 1, "title": "Sorting", "description": "Which one?"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errUnauthorized),
		},
		{
			name:     "unknown subject",
			method:   http.MethodPost,
			path:     "/api/questions",
			body:     []byte(`{"subjectId": 404, "title": "Sorting", "description": "Which one?"}`),
			cookie:   cookie,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Message: "subject not found",
				Errors:  map[string]string{"subjectId": "subject not found"},
			}),
		},
		{
			name:     "blank title",
			method:   http.MethodPost,
			path:     "/api/questions",
			body:     []byte(`{"subjectId": 1, "title": "   ", "description": "Which one?"}`),
			cookie:   cookie,
			wantCode: http.StatusBadRequest,
		},
	}
	app.run(t, tests)

	qs, err := app.questionRepo.QueryQuestions(ctx, core.NewPagination(0, 0))
	require.NoError(t, err)
	assert.Empty(t, qs)
	usr, err = app.usrRepo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Zero(t, usr.TotalQuestions)
}

func TestQueryQuestions_Pagination(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "alice", "alice@example.com", pwd)
	start := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		testutil.CreateQuestion(t, app.questionRepo, usr.ID, 1+i%6, fmt.Sprintf("Q%02d", i), start.Add(time.Duration(i)*time.Minute))
	}

	seen := make(map[int]bool)
	var prev *question.Question
	for _, tc := range []struct {
		offset int
		want   int
	}{{0, 10}, {10, 10}, {20, 5}, {30, 0}} {
		req, rec := newRequest(http.MethodGet, fmt.Sprintf("/api/questions?limit=10&offset=%d", tc.offset))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page []question.Question
		unmarshal(t, rec, &page)
		require.Len(t, page, tc.want, "offset %d", tc.offset)
		for i := range page {
			assert.False(t, seen[page[i].ID], "question %d listed twice", page[i].ID)
			seen[page[i].ID] = true
			if prev != nil {
				assert.True(t, !page[i].CreatedAt.After(prev.CreatedAt), "not newest first")
			}
			prev = &page[i]
		}
	}
	assert.Len(t, seen, 25)

	// bad params fall back to the defaults
	req, rec := newRequest(http.MethodGet, "/api/questions?limit=abc&offset=-3")
	app.ServeHTTP(rec, req)
	var page []question.Question
	unmarshal(t, rec, &page)
	assert.Len(t, page, 20)
	assert.Equal(t, "Q24", page[0].Title)
}

func TestQuestionDetail(t *testing.T) {
	app := setup(t)
	alice := testutil.CreateUser(t, app.usrRepo, "alice", "alice@example.com", pwd)
	bob := testutil.CreateUser(t, app.usrRepo, "bob", "bob@example.com", pwd)
	q := testutil.CreateQuestion(t, app.questionRepo, alice.ID, 3, "Moles")
	qPath := "/api/questions/" + strconv.Itoa(q.ID)

	tests := []httpTest{
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     qPath,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, q),
		},
		{
			name:     "not found",
			method:   http.MethodGet,
			path:     "/api/questions/999",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "Question not found"}),
		},
		{
			name:     "malformed id",
			method:   http.MethodGet,
			path:     "/api/questions/abc",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "by subject",
			method:   http.MethodGet,
			path:     "/api/questions/subject/3",
			wantCode: http.StatusOK,
			wantData: marchallList(t, q),
		},
		{
			name:     "by empty subject",
			method:   http.MethodGet,
			path:     "/api/questions/subject/4",
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "by user",
			method:   http.MethodGet,
			path:     "/api/users/" + strconv.Itoa(alice.ID) + "/questions",
			wantCode: http.StatusOK,
			wantData: marchallList(t, q),
		},
		{
			name:     "no answers yet",
			method:   http.MethodGet,
			path:     qPath + "/answers",
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "answer unknown question",
			method:   http.MethodPost,
			path:     "/api/questions/999/answers",
			body:     []byte(`{"content": "42"}`),
			cookie:   app.login(t, bob),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Message: "Question not found"}),
		},
		{
			name:     "update by non author",
			method:   http.MethodPatch,
			path:     qPath,
			body:     []byte(`{"isResolved": true}`),
			cookie:   app.login(t, bob),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "empty update",
			method:   http.MethodPatch,
			path:     qPath,
			body:     []byte(`{}`),
			cookie:   app.login(t, alice),
			wantCode: http.StatusBadRequest,
		},
	}
	app.run(t, tests)

	req, rec := newAuthRequest(http.MethodPatch, qPath, app.login(t, alice), []byte(`{"isResolved": true}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got question.Question
	unmarshal(t, rec, &got)
	assert.True(t, got.IsResolved)
	assert.Equal(t, q.Title, got.Title)
}
