package inmemdb

import (
	"context"
	"sort"

	"github.com/nexclass/nexclass/core/rating"
)

type ratingRepository struct {
	db *DB
}

var _ rating.Repository = (*ratingRepository)(nil)

func NewRatingRepository(db *DB) *ratingRepository {
	return &ratingRepository{db: db}
}

func (repo *ratingRepository) GetRating(_ context.Context, teacherID, studentID string) (rating.Rating, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, r := range repo.db.ratings {
		if r.TeacherID == teacherID && r.StudentID == studentID {
			return r, nil
		}
	}
	return rating.Rating{}, rating.ErrNotFound
}

func (repo *ratingRepository) SaveRating(_ context.Context, r rating.Rating) (rating.Rating, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, existing := range repo.db.ratings {
		if existing.TeacherID == r.TeacherID && existing.StudentID == r.StudentID {
			r.ID = existing.ID
			r.CreatedAt = existing.CreatedAt
			repo.db.ratings[i] = r
			return r, nil
		}
	}
	repo.db.ratings = append(repo.db.ratings, r)
	return r, nil
}

func (repo *ratingRepository) ListTeacherRatings(_ context.Context, teacherID string) ([]rating.Rating, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ratings := make([]rating.Rating, 0)
	for _, r := range repo.db.ratings {
		if r.TeacherID == teacherID {
			ratings = append(ratings, r)
		}
	}
	sort.SliceStable(ratings, func(i, j int) bool { return ratings[i].UpdatedAt.After(ratings[j].UpdatedAt) })
	return ratings, nil
}

func (repo *ratingRepository) GetStats(_ context.Context, teacherID string) (rating.Stats, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	s, ok := repo.db.stats[teacherID]
	if !ok {
		return rating.Stats{}, rating.ErrNotFound
	}
	return s, nil
}

func (repo *ratingRepository) SaveStats(_ context.Context, s rating.Stats) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.stats[s.TeacherID] = s
	return nil
}
