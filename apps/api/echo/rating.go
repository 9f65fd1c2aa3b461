package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core/rating"
)

type ratingApi struct {
	svc      *rating.Service
	validate *validator.Validate
}

func registerRatingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *rating.Service, validate *validator.Validate) {
	api := ratingApi{
		svc:      svc,
		validate: validate,
	}

	g.PUT("/teachers/:id/rating", api.rate, jwt, studentMiddleware())
	g.GET("/teachers/:id/ratings", api.query, jwt)
}

func (api *ratingApi) rate(ctx echo.Context) error {
	var data rating.NewRating
	if err := bindValid(ctx, &data, api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	r, err := api.svc.Rate(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "rating teacher")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *ratingApi) query(ctx echo.Context) error {
	teacherID := ctx.Param("id")

	stats, err := api.svc.GetTeacherStats(ctx.Request().Context(), teacherID)
	if err != nil {
		return errors.Wrap(err, "getting teacher stats")
	}
	ratings, err := api.svc.ListTeacherRatings(ctx.Request().Context(), teacherID)
	if err != nil {
		return errors.Wrap(err, "listing teacher ratings")
	}
	if ratings == nil {
		ratings = []rating.Rating{}
	}
	return ctx.JSON(http.StatusOK, TeacherRatingsResponse{Stats: stats, Ratings: ratings})
}

type TeacherRatingsResponse struct {
	Stats   rating.Stats    `json:"stats"`
	Ratings []rating.Rating `json:"ratings"`
}
