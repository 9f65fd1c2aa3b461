package inmemdb

import (
	"context"
	"sort"

	"github.com/nexclass/nexclass/core/quiz"
)

type resultRepository struct {
	db *DB
}

var _ quiz.ResultStore = (*resultRepository)(nil)

func NewResultRepository(db *DB) *resultRepository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) SaveResult(_ context.Context, res quiz.Result) (quiz.Result, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.results = append(repo.db.results, res)
	return res, nil
}

func (repo *resultRepository) ExistsResult(_ context.Context, studentID, quizID string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, res := range repo.db.results {
		if res.StudentID == studentID && res.QuizID == quizID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *resultRepository) GetLatestResult(_ context.Context, studentID, quizID string) (quiz.Result, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	// results are appended in completion order
	for i := len(repo.db.results) - 1; i >= 0; i-- {
		if res := repo.db.results[i]; res.StudentID == studentID && res.QuizID == quizID {
			return res, nil
		}
	}
	return quiz.Result{}, quiz.ErrNotFound
}

func (repo *resultRepository) ListStudentResults(_ context.Context, studentID string) ([]quiz.Result, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	results := make([]quiz.Result, 0)
	for _, res := range repo.db.results {
		if res.StudentID == studentID {
			results = append(results, res)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].CompletedAt.After(results[j].CompletedAt) })
	return results, nil
}

// Results returns a copy of every saved result.
func (repo *resultRepository) Results() []quiz.Result {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	return append([]quiz.Result(nil), repo.db.results...)
}
