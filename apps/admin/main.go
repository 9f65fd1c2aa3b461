package main

import (
	"log"
	"os"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/user"
	emailsvc "github.com/nexclass/nexclass/services/email"
	logsvc "github.com/nexclass/nexclass/services/logger"
	"github.com/nexclass/nexclass/storage/database"
	sqlxrepos "github.com/nexclass/nexclass/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	// start CLI
	cli := commandLine{
		db: db,
		usrSvc: user.NewService(
			conf,
			sqlxrepos.NewUserRepository(db),
			emailsvc.NewConsoleService(conf, logger),
		),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
