package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/guardian"
)

type guardianApi struct {
	svc *guardian.Service
}

func registerGuardianAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *guardian.Service) {
	api := guardianApi{svc: svc}

	gg := g.Group("/guardians", jwt, staffMiddleware())
	gg.POST("", api.create)
	gg.GET("", api.query)
	gg.DELETE("", api.destroyMultiple)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.destroy)
}

func (api *guardianApi) create(ctx echo.Context) error {
	var data guardian.NewGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGuardian")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	gdn, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating guardian")
	}
	return ctx.JSON(http.StatusCreated, gdn)
}

func (api *guardianApi) query(ctx echo.Context) error {
	filter := new(guardian.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []guardian.Guardian{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	guardians, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying guardians")
	}
	if guardians == nil {
		guardians = []guardian.Guardian{}
	}
	return ctx.JSON(http.StatusOK, guardians)
}

func (api *guardianApi) retrieve(ctx echo.Context) error {
	gdn, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding guardian by ID")
	}
	return ctx.JSON(http.StatusOK, gdn)
}

func (api *guardianApi) update(ctx echo.Context) error {
	var data guardian.UpdateGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGuardian")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	gdn, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating guardian")
	}
	return ctx.JSON(http.StatusOK, gdn)
}

func (api *guardianApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting guardian")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *guardianApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting guardians")
	}
	return ctx.NoContent(http.StatusNoContent)
}
