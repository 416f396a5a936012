package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/installment"
	"github.com/trezcool/dereva/core/student"
)

type installmentApi struct {
	svc        installment.Service
	studentSvc student.Service
	validate   *validator.Validate
}

func registerInstallmentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc installment.Service,
	studentSvc student.Service,
	validate *validator.Validate,
) {
	api := installmentApi{
		svc:        svc,
		studentSvc: studentSvc,
		validate:   validate,
	}

	pg := g.Group("/installments", jwt)
	pg.POST("", api.create)
	pg.GET("", api.query)

	dg := pg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/payments", api.recordPayment, adminMiddleware())
	dg.POST("/approve", api.approve, adminMiddleware())
	dg.POST("/reject", api.reject, adminMiddleware())
}

func (api *installmentApi) ctxStudent(ctx echo.Context, claims Claims) (student.Student, error) {
	stu, err := api.studentSvc.GetByEmail(ctx.Request().Context(), claims.Email)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpForbidden
		}
		return student.Student{}, errors.Wrap(err, "finding student by email")
	}
	return stu, nil
}

func (api *installmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data installment.NewPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPlan")
	}

	// students can only request plans for themselves
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

	plan, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == installment.ErrPlanExists {
			return conflictError(installment.ErrPlanExists)
		}
		return errors.Wrap(err, "creating installment plan")
	}
	return ctx.JSON(http.StatusCreated, plan)
}

func (api *installmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(installment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []installment.Plan{})
	}
	filter.Clean()

	// students only see their own plans
	if !claims.IsAdmin {
		stu, err := api.ctxStudent(ctx, claims)
		if err != nil {
			return err
		}
		filter.StudentID = stu.ID
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	plans, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying installment plans")
	}
	if plans == nil {
		plans = []installment.Plan{}
	}
	return ctx.JSON(http.StatusOK, plans)
}

func (api *installmentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	plan, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == installment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding installment plan by ID")
	}

	if !claims.IsAdmin {
		stu, err := api.ctxStudent(ctx, claims)
		if err != nil {
			return err
		}
		if plan.StudentID != stu.ID {
			return errHttpNotFound
		}
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *installmentApi) recordPayment(ctx echo.Context) error {
	var data installment.RecordPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	plan, err := api.svc.RecordPayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		switch errors.Cause(err) {
		case installment.ErrNotFound, installment.ErrItemNotFound:
			return errHttpNotFound
		case installment.ErrItemAlreadyPaid:
			return conflictError(installment.ErrItemAlreadyPaid)
		}
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusOK, plan)
}

func (api *installmentApi) approve(ctx echo.Context) error {
	return api.review(ctx, api.svc.Approve, "approving installment plan")
}

func (api *installmentApi) reject(ctx echo.Context) error {
	return api.review(ctx, api.svc.Reject, "rejecting installment plan")
}

func (api *installmentApi) review(
	ctx echo.Context,
	do func(context.Context, string, string) (installment.Plan, error),
	msg string,
) error {
	var data ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}
	data.Comment = core.CleanString(data.Comment)

	plan, err := do(ctx.Request().Context(), ctx.Param("id"), data.Comment)
	if err != nil {
		switch errors.Cause(err) {
		case installment.ErrNotFound:
			return errHttpNotFound
		case installment.ErrAlreadyReviewed:
			return conflictError(installment.ErrAlreadyReviewed)
		}
		return errors.Wrap(err, msg)
	}
	return ctx.JSON(http.StatusOK, plan)
}

type ReviewRequest struct {
	Comment string `json:"comment"`
}
