package rating

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/user"
)

// Rating is the mark a student gives a teacher. A student has at most one Rating per teacher.
type Rating struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	StudentID string    `json:"student_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Stats struct {
	TeacherID     string    `json:"teacher_id"`
	RatingCount   int       `json:"rating_count"`
	AverageRating float64   `json:"average_rating"`
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

type NewRating struct {
	Stars   int    `json:"stars" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

func (nr *NewRating) Validate(validate *validator.Validate) error {
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}

// Event is sent to every Observer after a Rating is saved.
type Event struct {
	Rating  Rating
	Teacher user.User
	Student user.User
	Created bool // false when an existing Rating was updated
}
