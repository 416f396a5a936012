package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/booking"
	"github.com/trezcool/dereva/core/instructor"
)

type instructorApi struct {
	svc        instructor.Service
	bookingSvc booking.Service
	validate   *validator.Validate
}

func registerInstructorAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc instructor.Service,
	bookingSvc booking.Service,
	validate *validator.Validate,
) {
	api := instructorApi{
		svc:        svc,
		bookingSvc: bookingSvc,
		validate:   validate,
	}

	ig := g.Group("/instructors", jwt)
	ig.POST("", api.create, adminMiddleware())
	ig.GET("", api.query)
	ig.GET("/availability/check", api.checkAvailability)

	dg := ig.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.PUT("/availability", api.setAvailability)
	dg.GET("/slots", api.listSlots)
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *instructorApi) create(ctx echo.Context) error {
	var data instructor.NewInstructor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstructor")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	ins, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating instructor")
	}
	return ctx.JSON(http.StatusCreated, ins)
}

func (api *instructorApi) query(ctx echo.Context) error {
	filter := new(instructor.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []instructor.Instructor{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	instructors, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying instructors")
	}
	if instructors == nil {
		instructors = []instructor.Instructor{}
	}
	return ctx.JSON(http.StatusOK, instructors)
}

func (api *instructorApi) retrieve(ctx echo.Context) error {
	ins, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == instructor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding instructor by ID")
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *instructorApi) update(ctx echo.Context) error {
	origIns, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == instructor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding instructor by ID")
	}

	var data instructor.UpdateInstructor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInstructor")
	}
	if err := data.Validate(origIns, api.validate, api.svc); err != nil {
		return err
	}

	ins, err := api.svc.Update(ctx.Request().Context(), origIns.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating instructor")
	}
	return ctx.JSON(http.StatusOK, ins)
}

// setAvailability replaces the instructor's declared availability.
// Instructors may only set their own; admins may set anyone's.
func (api *instructorApi) setAvailability(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ins, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == instructor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding instructor by ID")
	}
	if !claims.IsAdmin && !(claims.IsInstructor && claims.Email == ins.Email) {
		return errHttpForbidden
	}

	var data instructor.SetAvailability
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetAvailability")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ins, err = api.svc.SetAvailability(ctx.Request().Context(), ins.ID, data)
	if err != nil {
		return errors.Wrap(err, "setting availability")
	}
	return ctx.JSON(http.StatusOK, ins)
}

// checkAvailability lists active instructors free at ?date=<Y-m-d>&time=<HH:MM-HH:MM>.
func (api *instructorApi) checkAvailability(ctx echo.Context) error {
	date := core.CleanString(ctx.QueryParam("date"))
	timeSlot := core.CleanString(ctx.QueryParam("time"))
	if date == "" || timeSlot == "" {
		return core.NewValidationError(errors.New("date and time query params are required"))
	}

	instructors, err := api.bookingSvc.ListAvailableInstructors(ctx.Request().Context(), date, timeSlot)
	if err != nil {
		return errors.Wrap(err, "listing available instructors")
	}
	if instructors == nil {
		instructors = []instructor.Instructor{}
	}
	return ctx.JSON(http.StatusOK, instructors)
}

// listSlots lists the instructor's free slots on ?date=<Y-m-d>.
func (api *instructorApi) listSlots(ctx echo.Context) error {
	date := core.CleanString(ctx.QueryParam("date"))
	if date == "" {
		return core.NewValidationError(errors.New("date query param is required"))
	}

	slots, err := api.bookingSvc.ListAvailableSlots(ctx.Request().Context(), ctx.Param("id"), date)
	if err != nil {
		if errors.Cause(err) == instructor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "listing available slots")
	}
	if slots == nil {
		slots = []string{}
	}
	return ctx.JSON(http.StatusOK, AvailableSlotsResponse{Date: date, Slots: slots})
}

func (api *instructorApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting instructor")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type AvailableSlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}
