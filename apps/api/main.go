package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/TanishSen/Learn-Scope/apps/api/echo"
	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/dashboard"
	"github.com/TanishSen/Learn-Scope/core/expertise"
	"github.com/TanishSen/Learn-Scope/core/livehelp"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/session"
	"github.com/TanishSen/Learn-Scope/core/subject"
	"github.com/TanishSen/Learn-Scope/core/user"
	emailsvc "github.com/TanishSen/Learn-Scope/services/email"
	logsvc "github.com/TanishSen/Learn-Scope/services/logger"
	"github.com/TanishSen/Learn-Scope/services/metrics"
	rediscache "github.com/TanishSen/Learn-Scope/storage/cache/redis"
	"github.com/TanishSen/Learn-Scope/storage/database"
	inmemdb "github.com/TanishSen/Learn-Scope/storage/database/inmem"
	sqlxrepos "github.com/TanishSen/Learn-Scope/storage/database/sqlx"
)

// repositories groups the storage implementations selected by the configuration.
type repositories struct {
	users      user.Repository
	subjects   subject.Repository
	questions  question.Repository
	liveHelp   livehelp.Repository
	expertise  expertise.Repository
	activities activity.Repository
	close      func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	repos, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s database: %v", conf.Database.Engine, err), err)
	}
	defer func() {
		if err := repos.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	sessionStore, err := setUpSessionStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session store: %v", err), err)
	}
	sessions := session.NewManager(sessionStore, conf.SecretKey, conf.AppName, conf.Server.SessionLifetime)

	var mailSvc core.EmailService
	if conf.Debug || conf.Email.SendgridKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(repos.users, mailSvc)
	subjectSvc := subject.NewService(repos.subjects)
	questionSvc := question.NewService(repos.questions, subjectSvc)
	activitySvc := activity.NewService(repos.activities)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, env %s", conf.Build, conf.Env))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	ctx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweepSessions(ctx, sessions, conf.Server.SessionSweep, logger)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Metrics:      metrics.New(),
		Validate:     validate,
		Translator:   translator,
		Sessions:     sessions,
		UserSvc:      usrSvc,
		SubjectSvc:   subjectSvc,
		QuestionSvc:  questionSvc,
		LiveHelpSvc:  livehelp.NewService(repos.liveHelp, subjectSvc),
		ExpertiseSvc: expertise.NewService(repos.expertise, subjectSvc),
		ActivitySvc:  activitySvc,
		DashboardSvc: dashboard.NewService(usrSvc, questionSvc, activitySvc),
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpRepositories(conf *core.Config) (*repositories, error) {
	switch conf.Database.Engine {
	case "", "inmem":
		db := inmemdb.Open()
		return &repositories{
			users:      inmemdb.NewUserRepository(db),
			subjects:   inmemdb.NewSubjectRepository(db),
			questions:  inmemdb.NewQuestionRepository(db),
			liveHelp:   inmemdb.NewLiveHelpRepository(db),
			expertise:  inmemdb.NewUserSubjectRepository(db),
			activities: inmemdb.NewActivityRepository(db),
			close:      func() error { return nil },
		}, nil

	case "postgres":
		db, err := setUpDB(conf)
		if err != nil {
			return nil, err
		}
		return &repositories{
			users:      sqlxrepos.NewUserRepository(db),
			subjects:   sqlxrepos.NewSubjectRepository(db),
			questions:  sqlxrepos.NewQuestionRepository(db),
			liveHelp:   sqlxrepos.NewLiveHelpRepository(db),
			expertise:  sqlxrepos.NewUserSubjectRepository(db),
			activities: sqlxrepos.NewActivityRepository(db),
			close:      db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown database engine %q", conf.Database.Engine)
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func setUpSessionStore(conf *core.Config) (session.Store, error) {
	if conf.Redis.Address == "" {
		return session.NewMemoryStore(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := rediscache.NewClient(ctx, conf.Redis)
	if err != nil {
		return nil, err
	}
	return rediscache.NewSessionStore(client), nil
}

// sweepSessions drops expired sessions every interval until ctx is done.
func sweepSessions(ctx context.Context, sessions *session.Manager, interval time.Duration, logger core.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Sweep(ctx)
			if err != nil {
				logger.Error(fmt.Sprintf("sweeping sessions: %v", err), err)
				continue
			}
			if n > 0 {
				logger.Info(fmt.Sprintf("swept %d expired sessions", n))
			}
		}
	}
}
