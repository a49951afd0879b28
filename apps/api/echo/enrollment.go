package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/user"
)

type enrollmentApi struct {
	svc      *enrollment.Service
	importer *enrollment.Importer
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *enrollment.Service, usrSvc *user.Service, logger core.Logger) {
	api := enrollmentApi{
		svc:      svc,
		importer: enrollment.NewImporter(svc, usrSvc.FindTeacher, logger),
	}

	cg := g.Group("/classes", jwt, staffMiddleware())
	cg.POST("", api.createClass)
	cg.GET("", api.queryClasses)
	cg.DELETE("", api.destroyClasses)
	cg.POST("/import", api.importClasses)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id", api.updateClass)
	cg.DELETE("/:id", api.destroyClass)

	rg := g.Group("/classrooms", jwt, staffMiddleware())
	rg.POST("", api.createClassroom)
	rg.GET("", api.queryClassrooms)
	rg.GET("/:id", api.retrieveClassroom)
	rg.DELETE("/:id", api.destroyClassroom)

	ag := g.Group("/assignments", jwt, staffMiddleware())
	ag.POST("", api.assign)
	ag.GET("", api.queryAssignments)
	ag.DELETE("/:id", api.unassign)
}

// Classes

func (api *enrollmentApi) createClass(ctx echo.Context) error {
	var data enrollment.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *enrollmentApi) queryClasses(ctx echo.Context) error {
	filter := new(enrollment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []enrollment.Class{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	classes, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []enrollment.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

// importClasses loads classes in bulk from the scheduling tool's CSV export.
func (api *enrollmentApi) importClasses(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a CSV file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	res, err := api.importer.Import(ctx.Request().Context(), f)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrMissingHeaders {
			return core.NewValidationError(nil, core.FieldError{Field: "file", Error: err.Error()})
		}
		return errors.Wrap(err, "importing classes")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *enrollmentApi) retrieveClass(ctx echo.Context) error {
	cls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == enrollment.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding class by ID")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *enrollmentApi) updateClass(ctx echo.Context) error {
	origCls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == enrollment.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding class by ID")
	}

	var data enrollment.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(origCls); err != nil {
		return err
	}

	cls, err := api.svc.Update(ctx.Request().Context(), origCls.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *enrollmentApi) destroyClass(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollmentApi) destroyClasses(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Classrooms

func (api *enrollmentApi) createClassroom(ctx echo.Context) error {
	var data enrollment.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	room, err := api.svc.CreateClassroom(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}
	return ctx.JSON(http.StatusCreated, room)
}

func (api *enrollmentApi) queryClassrooms(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	rooms, err := api.svc.QueryClassrooms(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	if rooms == nil {
		rooms = []enrollment.Classroom{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *enrollmentApi) retrieveClassroom(ctx echo.Context) error {
	room, err := api.svc.GetClassroom(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == enrollment.ErrClassroomNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding classroom by ID")
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *enrollmentApi) destroyClassroom(ctx echo.Context) error {
	if err := api.svc.DeleteClassrooms(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assignments

func (api *enrollmentApi) assign(ctx echo.Context) error {
	var data enrollment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	asg, err := api.svc.Assign(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning student")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *enrollmentApi) queryAssignments(ctx echo.Context) error {
	filter := new(enrollment.AssignmentFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []enrollment.Assignment{})
	}

	assignments, err := api.svc.QueryAssignments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []enrollment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *enrollmentApi) unassign(ctx echo.Context) error {
	if err := api.svc.Unassign(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
