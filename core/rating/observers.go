package rating

import (
	"context"
	"fmt"
	"math"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
)

// EmailObserver emails the rated teacher.
type EmailObserver struct {
	mailSvc core.EmailService
}

func NewEmailObserver(mailSvc core.EmailService) *EmailObserver {
	return &EmailObserver{mailSvc: mailSvc}
}

func (o *EmailObserver) Name() string { return "email" }

func (o *EmailObserver) OnRating(_ context.Context, evt Event) error {
	if evt.Teacher.Email == "" {
		return nil
	}
	o.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: evt.Teacher.Name, Address: evt.Teacher.Email}},
		Subject:      fmt.Sprintf("New rating received - %d/5 stars", evt.Rating.Stars),
		TemplateName: "new_rating",
		TemplateData: map[string]interface{}{
			"TeacherName": evt.Teacher.Name,
			"StudentName": evt.Student.Name,
			"Stars":       evt.Rating.Stars,
			"Comment":     evt.Rating.Comment,
			"Date":        evt.Rating.UpdatedAt.Format("02/01/2006 15:04"),
		},
	})
	return nil
}

// StatisticsObserver recomputes the rating count and average of the rated teacher.
type StatisticsObserver struct {
	repo    Repository
	nowFunc func() time.Time
}

func NewStatisticsObserver(repo Repository) *StatisticsObserver {
	return &StatisticsObserver{repo: repo, nowFunc: time.Now}
}

func (o *StatisticsObserver) Name() string { return "statistics" }

func (o *StatisticsObserver) OnRating(ctx context.Context, evt Event) error {
	ratings, err := o.repo.ListTeacherRatings(ctx, evt.Rating.TeacherID)
	if err != nil {
		return errors.Wrap(err, "listing teacher ratings")
	}
	if len(ratings) == 0 {
		return nil
	}
	var sum int
	for _, r := range ratings {
		sum += r.Stars
	}
	avg := float64(sum) / float64(len(ratings))

	return o.repo.SaveStats(ctx, Stats{
		TeacherID:     evt.Rating.TeacherID,
		RatingCount:   len(ratings),
		AverageRating: math.Round(avg*100) / 100,
		UpdatedAt:     o.nowFunc().UTC(),
	})
}

// ActivityObserver writes every rating to the activity log.
type ActivityObserver struct {
	logger core.Logger
}

func NewActivityObserver(logger core.Logger) *ActivityObserver {
	return &ActivityObserver{logger: logger}
}

func (o *ActivityObserver) Name() string { return "activity" }

func (o *ActivityObserver) OnRating(_ context.Context, evt Event) error {
	action := "updated their rating of"
	if evt.Created {
		action = "rated"
	}
	o.logger.Info(fmt.Sprintf("rating: %s %s %s with %d/5",
		evt.Student.Username, action, evt.Teacher.Username, evt.Rating.Stars))
	return nil
}
