package rating

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/user"
)

var ErrNotFound = core.NewNotFoundError("rating")

type (
	Repository interface {
		// GetRating returns the rating of a student for a teacher, or ErrNotFound.
		GetRating(ctx context.Context, teacherID, studentID string) (Rating, error)
		// SaveRating inserts the rating or updates the one of the same teacher and student.
		SaveRating(ctx context.Context, r Rating) (Rating, error)
		// ListTeacherRatings returns the ratings of a teacher, newest first.
		ListTeacherRatings(ctx context.Context, teacherID string) ([]Rating, error)
		// GetStats returns the stats of a teacher, or ErrNotFound before the first rating.
		GetStats(ctx context.Context, teacherID string) (Stats, error)
		SaveStats(ctx context.Context, s Stats) error
	}

	UserGetter interface {
		GetStudent(ctx context.Context, id string) (user.User, error)
		GetTeacher(ctx context.Context, id string) (user.User, error)
	}

	// Observer reacts to saved ratings. Errors are logged and never fail the rating.
	Observer interface {
		Name() string
		OnRating(ctx context.Context, evt Event) error
	}
)

type Service struct {
	repo      Repository
	users     UserGetter
	logger    core.Logger
	observers []Observer
	nowFunc   func() time.Time
}

func NewService(repo Repository, users UserGetter, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// AddObserver registers observers; an observer already registered is skipped.
func (svc *Service) AddObserver(observers ...Observer) {
	for _, o := range observers {
		if !svc.hasObserver(o) {
			svc.observers = append(svc.observers, o)
		}
	}
}

// RemoveObserver unregisters the observer with the same name.
func (svc *Service) RemoveObserver(o Observer) {
	kept := svc.observers[:0]
	for _, obs := range svc.observers {
		if obs.Name() != o.Name() {
			kept = append(kept, obs)
		}
	}
	svc.observers = kept
}

func (svc *Service) Observers() []Observer {
	return svc.observers
}

func (svc *Service) hasObserver(o Observer) bool {
	for _, obs := range svc.observers {
		if obs.Name() == o.Name() {
			return true
		}
	}
	return false
}

// Rate creates the rating of a student for a teacher, or updates the existing one, then notifies the observers.
func (svc *Service) Rate(ctx context.Context, studentID, teacherID string, nr NewRating) (Rating, error) {
	teacher, err := svc.users.GetTeacher(ctx, teacherID)
	if err != nil {
		return Rating{}, errors.Wrap(err, "getting teacher")
	}
	student, err := svc.users.GetStudent(ctx, studentID)
	if err != nil {
		return Rating{}, errors.Wrap(err, "getting student")
	}

	now := svc.nowFunc().UTC()
	r, err := svc.repo.GetRating(ctx, teacherID, studentID)
	created := false
	switch {
	case err == nil:
	case errors.Cause(err) == ErrNotFound:
		created = true
		r = Rating{
			ID:        uuid.New().String(),
			TeacherID: teacherID,
			StudentID: studentID,
			CreatedAt: now,
		}
	default:
		return Rating{}, errors.Wrap(err, "getting rating")
	}
	r.Stars = nr.Stars
	r.Comment = nr.Comment
	r.UpdatedAt = now

	if r, err = svc.repo.SaveRating(ctx, r); err != nil {
		return Rating{}, errors.Wrap(err, "saving rating")
	}

	svc.notify(ctx, Event{Rating: r, Teacher: teacher, Student: student, Created: created})
	return r, nil
}

func (svc *Service) notify(ctx context.Context, evt Event) {
	for _, o := range svc.observers {
		if err := o.OnRating(ctx, evt); err != nil {
			svc.logger.Error(fmt.Sprintf("rating observer %s: %v", o.Name(), err), err)
		}
	}
}

// GetTeacherStats returns the rating stats of a teacher; zero stats before the first rating.
func (svc *Service) GetTeacherStats(ctx context.Context, teacherID string) (Stats, error) {
	if _, err := svc.users.GetTeacher(ctx, teacherID); err != nil {
		return Stats{}, errors.Wrap(err, "getting teacher")
	}
	s, err := svc.repo.GetStats(ctx, teacherID)
	if errors.Cause(err) == ErrNotFound {
		return Stats{TeacherID: teacherID}, nil
	}
	return s, err
}

func (svc *Service) ListTeacherRatings(ctx context.Context, teacherID string) ([]Rating, error) {
	if _, err := svc.users.GetTeacher(ctx, teacherID); err != nil {
		return nil, errors.Wrap(err, "getting teacher")
	}
	return svc.repo.ListTeacherRatings(ctx, teacherID)
}
