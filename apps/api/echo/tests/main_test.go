package tests

import (
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/dereva/apps/api/echo"
	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/booking"
	"github.com/trezcool/dereva/core/installment"
	"github.com/trezcool/dereva/core/instructor"
	"github.com/trezcool/dereva/core/maintenance"
	"github.com/trezcool/dereva/core/student"
	"github.com/trezcool/dereva/core/user"
	"github.com/trezcool/dereva/core/vehicle"
	emailsvc "github.com/trezcool/dereva/services/email"
	inmemdb "github.com/trezcool/dereva/storage/database/inmem"
)

var (
	app  Server
	conf *core.Config

	db      *inmemdb.DB
	usrRepo user.Repository
	stuRepo student.Repository
	insRepo instructor.Repository
	vehRepo vehicle.Repository
	mntRepo maintenance.Repository
	bkgRepo booking.Repository
	plnRepo installment.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	_ = os.Setenv("ENV", "TEST")
	conf = core.NewConfig()

	// set up DB & repos
	var err error
	if db, err = inmemdb.Open(); err != nil {
		panic(err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	stuRepo = inmemdb.NewStudentRepository(db)
	insRepo = inmemdb.NewInstructorRepository(db)
	vehRepo = inmemdb.NewVehicleRepository(db)
	mntRepo = inmemdb.NewMaintenanceRepository(db)
	bkgRepo = inmemdb.NewBookingRepository(db)
	plnRepo = inmemdb.NewInstallmentRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	stuSvc := student.NewService(stuRepo)
	insSvc := instructor.NewService(insRepo)
	vehSvc := vehicle.NewService(vehRepo)
	mntSvc := maintenance.NewService(mntRepo, vehSvc)
	bkgSvc := booking.NewService(bkgRepo, insSvc, stuSvc, vehSvc)
	plnSvc := installment.NewService(plnRepo, stuSvc, mailSvc, conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         testLogger{},
			Validate:       validate,
			Translator:     translator,
			UserSvc:        usrSvc,
			StudentSvc:     stuSvc,
			InstructorSvc:  insSvc,
			VehicleSvc:     vehSvc,
			MaintenanceSvc: mntSvc,
			BookingSvc:     bkgSvc,
			InstallmentSvc: plnSvc,
		},
	)

	os.Exit(m.Run())
}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}
