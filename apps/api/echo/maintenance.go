package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core/maintenance"
)

type maintenanceApi struct {
	svc      maintenance.Service
	validate *validator.Validate
}

func registerMaintenanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc maintenance.Service, validate *validator.Validate) {
	api := maintenanceApi{
		svc:      svc,
		validate: validate,
	}

	mg := g.Group("/maintenance", jwt, adminMiddleware())
	mg.POST("", api.create)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.DELETE("/:id", api.destroy)
}

func (api *maintenanceApi) create(ctx echo.Context) error {
	var data maintenance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating maintenance record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *maintenanceApi) query(ctx echo.Context) error {
	filter := new(maintenance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []maintenance.Record{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	records, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying maintenance records")
	}
	if records == nil {
		records = []maintenance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *maintenanceApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == maintenance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding maintenance record by ID")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *maintenanceApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting maintenance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}
