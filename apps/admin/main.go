package main

import (
	"log"
	"os"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/services/email"
	"github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	"github.com/trezcool/shule/storage/database/sqlx"
)

func main() {
	defer os.Exit(0)

	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, core.Conf)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal("pinging database", err)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(db, usrRepo, emailsvc.NewConsoleService(), logger)
	enrSvc := enrollment.NewService(db, sqlxrepos.NewEnrollmentRepository(db))

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
		usrSvc:  usrSvc,
		enrSvc:  enrSvc,
		logger:  logger,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
