package main

import (
	"log"
	"os"

	"github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/billing"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/guardian"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/services/email"
	"github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	"github.com/trezcool/shule/storage/database/sqlx"
)

func main() {
	stdLogger := log.New(os.Stdout, core.Conf.AppName+" ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, core.Conf)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(db, sqlxrepos.NewUserRepository(db), mailSvc, logger)
	gdnSvc := guardian.NewService(db, sqlxrepos.NewGuardianRepository(db))
	stdSvc := student.NewService(db, sqlxrepos.NewStudentRepository(db))
	enrSvc := enrollment.NewService(db, sqlxrepos.NewEnrollmentRepository(db))
	engine := billing.NewEngine(billing.DefaultPriceTable(), core.Conf.Billing, logger)
	billSvc := billing.NewService(engine, stdSvc, gdnSvc, enrSvc, mailSvc, logger)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       core.Conf.ServerAddress(),
			Logger:        logger,
			UserSvc:       usrSvc,
			StudentSvc:    stdSvc,
			GuardianSvc:   gdnSvc,
			EnrollmentSvc: enrSvc,
			BillingSvc:    billSvc,
		},
	)
	app.Start()
}
