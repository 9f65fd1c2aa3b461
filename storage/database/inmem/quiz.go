package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) GetQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, qz := range repo.db.quizzes {
		if qz.ID == id {
			return qz, nil
		}
	}
	return quiz.Quiz{}, quiz.ErrNotFound
}

func (repo *quizRepository) GetQuestions(_ context.Context, quizID string) ([]quiz.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	questions := make([]quiz.Question, 0)
	for _, q := range repo.db.questions {
		if q.QuizID == quizID {
			questions = append(questions, q)
		}
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Position < questions[j].Position })
	return questions, nil
}

func (repo *quizRepository) GetQuestion(_ context.Context, id string) (quiz.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, q := range repo.db.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return quiz.Question{}, quiz.ErrNotFound
}

func (repo *quizRepository) GetAnswers(_ context.Context, questionID string) ([]quiz.Answer, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	answers := make([]quiz.Answer, 0)
	for _, a := range repo.db.answers {
		if a.QuestionID == questionID {
			answers = append(answers, a)
		}
	}
	return answers, nil
}

func (repo *quizRepository) GetAnswer(_ context.Context, id string) (quiz.Answer, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, a := range repo.db.answers {
		if a.ID == id {
			return a, nil
		}
	}
	return quiz.Answer{}, quiz.ErrNotFound
}

func (repo *quizRepository) CreateQuiz(_ context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.quizzes = append(repo.db.quizzes, qz)
	return qz, nil
}

func (repo *quizRepository) CreateQuestion(_ context.Context, q quiz.Question) (quiz.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.questions = append(repo.db.questions, q)
	return q, nil
}

func (repo *quizRepository) CreateAnswer(_ context.Context, a quiz.Answer) (quiz.Answer, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.answers = append(repo.db.answers, a)
	return a, nil
}

func (repo *quizRepository) FilterQuizzes(_ context.Context, filter quiz.QueryFilter, orderings []core.DBOrdering) ([]quiz.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	quizzes := make([]quiz.Quiz, 0)
	for _, qz := range repo.db.quizzes {
		if filter.TeacherID != "" && qz.TeacherID != filter.TeacherID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(qz.Title), search) {
			continue
		}
		quizzes = append(quizzes, qz)
	}

	less := func(i, j int) bool { return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt) }
	for _, ord := range orderings {
		if ord.Field == "title" {
			if ord.Ascending {
				less = func(i, j int) bool { return quizzes[i].Title < quizzes[j].Title }
			} else {
				less = func(i, j int) bool { return quizzes[i].Title > quizzes[j].Title }
			}
			break
		}
	}
	sort.SliceStable(quizzes, less)
	return quizzes, nil
}
