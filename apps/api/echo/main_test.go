package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/nexclass/nexclass/apps/api/echo"
	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/blog"
	"github.com/nexclass/nexclass/core/quiz"
	"github.com/nexclass/nexclass/core/rating"
	"github.com/nexclass/nexclass/core/user"
	emailsvc "github.com/nexclass/nexclass/services/email"
	logsvc "github.com/nexclass/nexclass/services/logger"
	inmemdb "github.com/nexclass/nexclass/storage/database/inmem"
	"github.com/nexclass/nexclass/storage/session"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type resultRepository interface {
	quiz.ResultStore
	Results() []quiz.Result
}

type testApp struct {
	*echoapi.Server
	usrRepo    user.Repository
	quizRepo   quiz.Repository
	ratingRepo rating.Repository
	blogRepo   blog.Repository
	results    resultRepository
	mailSvc    *emailsvc.ConsoleServiceMock
}

// newTestApp returns a server backed by a fresh in-memory database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	quizRepo := inmemdb.NewQuizRepository(db)
	resultRepo := inmemdb.NewResultRepository(db)
	ratingRepo := inmemdb.NewRatingRepository(db)
	blogRepo := inmemdb.NewBlogRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	ratingSvc := rating.NewService(ratingRepo, usrSvc, logger)
	ratingSvc.AddObserver(rating.NewStatisticsObserver(ratingRepo), rating.NewEmailObserver(mailSvc))

	server := echoapi.NewServer("", make(chan os.Signal, 1), &echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		UserSvc:    usrSvc,
		QuizSvc:    quiz.NewService(quizRepo, resultRepo),
		Controller: quiz.NewController(quizRepo, session.NewMemoryStore(conf.Session.MaxAge), resultRepo),
		RatingSvc:  ratingSvc,
		BlogSvc:    blog.NewService(blogRepo, usrSvc),
	})

	return &testApp{
		Server:     server,
		usrRepo:    usrRepo,
		quizRepo:   quizRepo,
		ratingRepo: ratingRepo,
		blogRepo:   blogRepo,
		results:    resultRepo,
		mailSvc:    mailSvc,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, app *testApp, usr user.User) string {
	auth := app.Authenticator()
	token, err := auth.GenerateToken(auth.UserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}
