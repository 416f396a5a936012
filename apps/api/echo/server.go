package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/booking"
	"github.com/trezcool/dereva/core/installment"
	"github.com/trezcool/dereva/core/instructor"
	"github.com/trezcool/dereva/core/maintenance"
	"github.com/trezcool/dereva/core/student"
	"github.com/trezcool/dereva/core/user"
	"github.com/trezcool/dereva/core/vehicle"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc        user.Service
		StudentSvc     student.Service
		InstructorSvc  instructor.Service
		VehicleSvc     vehicle.Service
		MaintenanceSvc maintenance.Service
		BookingSvc     booking.Service
		InstallmentSvc installment.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	initAuth(s.deps.Conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.deps.Conf.Debug || s.deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = s.deps.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(api, jwt, s.deps.UserSvc, s.deps.Validate, s.deps.Translator)
	registerStudentAPI(api, jwt, s.deps.StudentSvc, s.deps.Validate)
	registerInstructorAPI(api, jwt, s.deps.InstructorSvc, s.deps.BookingSvc, s.deps.Validate)
	registerVehicleAPI(api, jwt, s.deps.VehicleSvc, s.deps.Validate)
	registerMaintenanceAPI(api, jwt, s.deps.MaintenanceSvc, s.deps.Validate)
	registerBookingAPI(api, jwt, s.deps.BookingSvc, s.deps.StudentSvc, s.deps.Validate)
	registerInstallmentAPI(api, jwt, s.deps.InstallmentSvc, s.deps.StudentSvc, s.deps.Validate)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

// signalShutdown triggers a graceful shutdown of the server.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Errors() <-chan error { return s.errs }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Dereva API!")
}
