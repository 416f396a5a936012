package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core/vehicle"
)

type vehicleApi struct {
	svc      vehicle.Service
	validate *validator.Validate
}

func registerVehicleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc vehicle.Service, validate *validator.Validate) {
	api := vehicleApi{
		svc:      svc,
		validate: validate,
	}

	vg := g.Group("/vehicles", jwt)
	vg.POST("", api.create, adminMiddleware())
	vg.GET("", api.query)

	dg := vg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *vehicleApi) create(ctx echo.Context) error {
	var data vehicle.NewVehicle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVehicle")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	veh, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating vehicle")
	}
	return ctx.JSON(http.StatusCreated, veh)
}

func (api *vehicleApi) query(ctx echo.Context) error {
	filter := new(vehicle.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []vehicle.Vehicle{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	vehicles, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying vehicles")
	}
	if vehicles == nil {
		vehicles = []vehicle.Vehicle{}
	}
	return ctx.JSON(http.StatusOK, vehicles)
}

func (api *vehicleApi) retrieve(ctx echo.Context) error {
	veh, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == vehicle.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding vehicle by ID")
	}
	return ctx.JSON(http.StatusOK, veh)
}

func (api *vehicleApi) update(ctx echo.Context) error {
	origVeh, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == vehicle.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding vehicle by ID")
	}

	var data vehicle.UpdateVehicle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateVehicle")
	}
	if err := data.Validate(origVeh, api.validate); err != nil {
		return err
	}

	veh, err := api.svc.Update(ctx.Request().Context(), origVeh.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating vehicle")
	}
	return ctx.JSON(http.StatusOK, veh)
}

func (api *vehicleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting vehicle")
	}
	return ctx.NoContent(http.StatusNoContent)
}
