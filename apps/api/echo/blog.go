package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core/blog"
)

type blogApi struct {
	svc      *blog.Service
	validate *validator.Validate
}

func registerBlogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *blog.Service, validate *validator.Validate) {
	api := blogApi{
		svc:      svc,
		validate: validate,
	}

	// per-route middleware: the group mixes public and teacher routes
	pg := g.Group("/posts")
	pg.GET("", api.query)
	pg.GET("/archive", api.archive)
	pg.GET("/stats", api.stats, jwt)
	pg.GET("/mine", api.mine, jwt, teacherMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.POST("", api.create, jwt, teacherMiddleware())
	pg.PUT("/:id", api.update, jwt, teacherMiddleware())
	pg.DELETE("/:id", api.delete, jwt, teacherMiddleware())

	g.GET("/teachers/:id/posts", api.teacherPosts)
}

func (api *blogApi) query(ctx echo.Context) error {
	var filter blog.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []blog.Post{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	posts, err := api.svc.ListPosts(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *blogApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.GetPost(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting post")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *blogApi) teacherPosts(ctx echo.Context) error {
	posts, err := api.svc.ListTeacherPosts(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing teacher posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *blogApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	tp, err := api.svc.GetTeacherPosts(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting teacher posts")
	}
	return ctx.JSON(http.StatusOK, tp)
}

func (api *blogApi) stats(ctx echo.Context) error {
	stats, err := api.svc.GetStats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting blog stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *blogApi) archive(ctx echo.Context) error {
	archive, err := api.svc.GetArchive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting blog archive")
	}
	return ctx.JSON(http.StatusOK, archive)
}

func (api *blogApi) create(ctx echo.Context) error {
	var data blog.NewPost
	if err := bindValid(ctx, &data, api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, err := api.svc.CreatePost(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *blogApi) update(ctx echo.Context) error {
	var data blog.NewPost
	if err := bindValid(ctx, &data, api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, err := api.svc.UpdatePost(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating post")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *blogApi) delete(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.svc.DeletePost(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}
