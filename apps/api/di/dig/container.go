package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/nexclass/nexclass/apps/api/echo"
	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/blog"
	"github.com/nexclass/nexclass/core/quiz"
	"github.com/nexclass/nexclass/core/rating"
	"github.com/nexclass/nexclass/core/user"
	emailsvc "github.com/nexclass/nexclass/services/email"
	logsvc "github.com/nexclass/nexclass/services/logger"
	"github.com/nexclass/nexclass/storage/database"
	sqlxrepos "github.com/nexclass/nexclass/storage/database/sqlx"
	"github.com/nexclass/nexclass/storage/session"
)

const (
	sessionStoreMemory   = "memory"
	sessionStoreDatabase = "database"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	UserSvc    *user.Service
	QuizSvc    *quiz.Service
	Controller *quiz.Controller
	RatingSvc  *rating.Service
	BlogSvc    *blog.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newSessionStore(conf *core.Config, db *sqlx.DB) (session.Store, error) {
	switch conf.Session.Store {
	case sessionStoreMemory:
		return session.NewMemoryStore(conf.Session.MaxAge), nil
	case sessionStoreDatabase:
		return session.NewDBStore(db, conf.Session.MaxAge), nil
	}
	return nil, errors.Errorf("unknown session store %q", conf.Session.Store)
}

func newController(quizzes quiz.Repository, sessions session.Store, results quiz.ResultStore) *quiz.Controller {
	return quiz.NewController(quizzes, sessions, results)
}

func newRatingService(repo rating.Repository, users *user.Service, mailSvc core.EmailService, logger core.Logger) *rating.Service {
	svc := rating.NewService(repo, users, logger)
	svc.AddObserver(
		rating.NewStatisticsObserver(repo),
		rating.NewEmailObserver(mailSvc),
		rating.NewActivityObserver(logger),
	)
	return svc
}

func newBlogService(repo blog.Repository, users *user.Service) *blog.Service {
	return blog.NewService(repo, users)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(p.Conf.Server.Host, nil, &echoapi.Deps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Validate:   p.Validate,
		Translator: p.Translator,
		UserSvc:    p.UserSvc,
		QuizSvc:    p.QuizSvc,
		Controller: p.Controller,
		RatingSvc:  p.RatingSvc,
		BlogSvc:    p.BlogSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewQuizRepository, dig.As(new(quiz.Repository))))
	must(c.Provide(sqlxrepos.NewResultRepository, dig.As(new(quiz.ResultStore))))
	must(c.Provide(sqlxrepos.NewRatingRepository, dig.As(new(rating.Repository))))
	must(c.Provide(sqlxrepos.NewBlogRepository, dig.As(new(blog.Repository))))
	must(c.Provide(newSessionStore))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(quiz.NewService))
	must(c.Provide(newController))
	must(c.Provide(newRatingService))
	must(c.Provide(newBlogService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
