package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/billing"
	"github.com/trezcool/shule/core/guardian"
)

type billingApi struct {
	svc *billing.Service
}

func registerBillingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *billing.Service) {
	api := billingApi{svc: svc}

	bg := g.Group("/billing", jwt, staffMiddleware())
	bg.GET("/statements", api.allStatements)
	bg.GET("/statements/:guardianId", api.familyStatement)
	bg.POST("/statements/:guardianId/email", api.emailFamilyStatement)
}

// allStatements computes tuition line items for every family in the school.
func (api *billingApi) allStatements(ctx echo.Context) error {
	items, err := api.svc.AllStatements(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing statements")
	}
	if items == nil {
		items = []billing.LineItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *billingApi) familyStatement(ctx echo.Context) error {
	items, err := api.svc.FamilyStatement(ctx.Request().Context(), ctx.Param("guardianId"))
	if err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing family statement")
	}
	if items == nil {
		items = []billing.LineItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *billingApi) emailFamilyStatement(ctx echo.Context) error {
	items, err := api.svc.EmailFamilyStatement(ctx.Request().Context(), ctx.Param("guardianId"))
	if err != nil {
		if errors.Cause(err) == guardian.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "emailing family statement")
	}
	if items == nil {
		items = []billing.LineItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}
