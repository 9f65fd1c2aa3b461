package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nexclass/nexclass/core/rating"
)

const ratingColumns = "id, teacher_id, student_id, stars, comment, created_at, updated_at"

type ratingRow struct {
	ID        string    `db:"id"`
	TeacherID string    `db:"teacher_id"`
	StudentID string    `db:"student_id"`
	Stars     int       `db:"stars"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row ratingRow) unboil() rating.Rating {
	return rating.Rating{
		ID:        row.ID,
		TeacherID: row.TeacherID,
		StudentID: row.StudentID,
		Stars:     row.Stars,
		Comment:   row.Comment,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type statsRow struct {
	TeacherID     string    `db:"teacher_id"`
	RatingCount   int       `db:"rating_count"`
	AverageRating float64   `db:"average_rating"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type ratingRepository struct {
	db *sqlx.DB
}

var _ rating.Repository = (*ratingRepository)(nil)

func NewRatingRepository(db *sqlx.DB) *ratingRepository {
	return &ratingRepository{db: db}
}

func (repo *ratingRepository) GetRating(ctx context.Context, teacherID, studentID string) (rating.Rating, error) {
	var row ratingRow
	q := repo.db.Rebind("SELECT " + ratingColumns + " FROM teacher_ratings WHERE teacher_id = ? AND student_id = ?")
	if err := repo.db.GetContext(ctx, &row, q, teacherID, studentID); err != nil {
		return rating.Rating{}, trapNoRowsErr(err, rating.ErrNotFound)
	}
	return row.unboil(), nil
}

func (repo *ratingRepository) SaveRating(ctx context.Context, r rating.Rating) (rating.Rating, error) {
	q := "INSERT INTO teacher_ratings (" + ratingColumns + ") " +
		"VALUES (:id, :teacher_id, :student_id, :stars, :comment, :created_at, :updated_at) " +
		"ON CONFLICT (teacher_id, student_id) DO UPDATE SET " +
		"stars = excluded.stars, comment = excluded.comment, updated_at = excluded.updated_at"
	row := ratingRow{
		ID:        r.ID,
		TeacherID: r.TeacherID,
		StudentID: r.StudentID,
		Stars:     r.Stars,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return rating.Rating{}, err
	}
	return r, nil
}

func (repo *ratingRepository) ListTeacherRatings(ctx context.Context, teacherID string) ([]rating.Rating, error) {
	var rows []ratingRow
	q := repo.db.Rebind("SELECT " + ratingColumns + " FROM teacher_ratings WHERE teacher_id = ? ORDER BY updated_at DESC")
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID); err != nil {
		return nil, err
	}
	ratings := make([]rating.Rating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, row.unboil())
	}
	return ratings, nil
}

func (repo *ratingRepository) GetStats(ctx context.Context, teacherID string) (rating.Stats, error) {
	var row statsRow
	q := repo.db.Rebind("SELECT teacher_id, rating_count, average_rating, updated_at FROM teacher_stats WHERE teacher_id = ?")
	if err := repo.db.GetContext(ctx, &row, q, teacherID); err != nil {
		return rating.Stats{}, trapNoRowsErr(err, rating.ErrNotFound)
	}
	return rating.Stats{
		TeacherID:     row.TeacherID,
		RatingCount:   row.RatingCount,
		AverageRating: row.AverageRating,
		UpdatedAt:     row.UpdatedAt.UTC(),
	}, nil
}

func (repo *ratingRepository) SaveStats(ctx context.Context, s rating.Stats) error {
	q := "INSERT INTO teacher_stats (teacher_id, rating_count, average_rating, updated_at) " +
		"VALUES (:teacher_id, :rating_count, :average_rating, :updated_at) " +
		"ON CONFLICT (teacher_id) DO UPDATE SET " +
		"rating_count = excluded.rating_count, average_rating = excluded.average_rating, updated_at = excluded.updated_at"
	_, err := repo.db.NamedExecContext(ctx, q, statsRow{
		TeacherID:     s.TeacherID,
		RatingCount:   s.RatingCount,
		AverageRating: s.AverageRating,
		UpdatedAt:     s.UpdatedAt.UTC(),
	})
	return err
}
