package echoapi

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/quiz"
)

var (
	orderingParam = "ordering"
	questionParam = "question"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindQuestionIndex reads the `question` query param. Missing or invalid values mean the first question.
func bindQuestionIndex(ctx echo.Context) int {
	return quiz.ParseIndex(ctx.QueryParam(questionParam))
}

// validatable is a request payload that cleans and validates itself.
type validatable interface {
	Validate(validate *validator.Validate) error
}

// bindValid binds the request body into data, then validates it.
func bindValid(ctx echo.Context, data validatable, validate *validator.Validate) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrapf(err, "binding to %T", data)
	}
	return data.Validate(validate)
}
