package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core/booking"
	"github.com/trezcool/dereva/core/student"
)

type bookingApi struct {
	svc        booking.Service
	studentSvc student.Service
	validate   *validator.Validate
}

func registerBookingAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc booking.Service,
	studentSvc student.Service,
	validate *validator.Validate,
) {
	api := bookingApi{
		svc:        svc,
		studentSvc: studentSvc,
		validate:   validate,
	}

	bg := g.Group("/bookings", jwt)
	bg.POST("", api.create)
	bg.GET("", api.query)

	dg := bg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PATCH("/status", api.updateStatus, adminMiddleware())
	dg.DELETE("", api.cancel)
}

// ctxStudent resolves the calling student from the JWT claims.
func (api *bookingApi) ctxStudent(ctx echo.Context, claims Claims) (student.Student, error) {
	stu, err := api.studentSvc.GetByEmail(ctx.Request().Context(), claims.Email)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpForbidden
		}
		return student.Student{}, errors.Wrap(err, "finding student by email")
	}
	return stu, nil
}

func (api *bookingApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data booking.NewBooking
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBooking")
	}

	// students can only book for themselves
	if !claims.IsAdmin {
		stu, err := api.ctxStudent(ctx, claims)
		if err != nil {
			return err
		}
		data.StudentID = stu.ID
	}

	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bkg, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == booking.ErrSlotUnavailable {
			return conflictError(booking.ErrSlotUnavailable)
		}
		return errors.Wrap(err, "creating booking")
	}
	return ctx.JSON(http.StatusCreated, bkg)
}

func (api *bookingApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(booking.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []booking.Booking{})
	}
	filter.Clean()

	// students only see their own bookings
	if !claims.IsAdmin {
		stu, err := api.ctxStudent(ctx, claims)
		if err != nil {
			return err
		}
		filter.StudentID = stu.ID
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	bookings, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying bookings")
	}
	if bookings == nil {
		bookings = []booking.Booking{}
	}
	return ctx.JSON(http.StatusOK, bookings)
}

func (api *bookingApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	bkg, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == booking.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding booking by ID")
	}

	if !claims.IsAdmin {
		stu, err := api.ctxStudent(ctx, claims)
		if err != nil {
			return err
		}
		if bkg.StudentID != stu.ID {
			return errHttpNotFound
		}
	}
	return ctx.JSON(http.StatusOK, bkg)
}

func (api *bookingApi) updateStatus(ctx echo.Context) error {
	var data booking.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bkg, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		switch errors.Cause(err) {
		case booking.ErrNotFound:
			return errHttpNotFound
		case booking.ErrInvalidTransition:
			return conflictError(booking.ErrInvalidTransition)
		case booking.ErrSlotUnavailable:
			return conflictError(booking.ErrSlotUnavailable)
		}
		return errors.Wrap(err, "updating booking status")
	}
	return ctx.JSON(http.StatusOK, bkg)
}

// cancel transitions the booking to cancelled, freeing its slot.
// A student may only cancel their own booking.
func (api *bookingApi) cancel(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var bkg booking.Booking
	if claims.IsAdmin {
		bkg, err = api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), booking.UpdateStatus{Status: booking.StatusCancelled})
	} else {
		var stu student.Student
		if stu, err = api.ctxStudent(ctx, claims); err != nil {
			return err
		}
		bkg, err = api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"), stu.ID)
	}
	if err != nil {
		switch errors.Cause(err) {
		case booking.ErrNotFound, booking.ErrNotOwner:
			return errHttpNotFound
		case booking.ErrInvalidTransition:
			return conflictError(booking.ErrInvalidTransition)
		}
		return errors.Wrap(err, "cancelling booking")
	}
	return ctx.JSON(http.StatusOK, bkg)
}
