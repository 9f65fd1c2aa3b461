package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
)

var errPositionTaken = errors.New("a question already exists at this position")

// Service handles quiz authoring by teachers and result queries for students.
type Service struct {
	repo    Repository
	results ResultStore
	nowFunc func() time.Time
}

func NewService(repo Repository, results ResultStore) *Service {
	return &Service{
		repo:    repo,
		results: results,
		nowFunc: time.Now,
	}
}

func (svc *Service) now() time.Time {
	return svc.nowFunc().UTC()
}

func (svc *Service) CreateQuiz(ctx context.Context, teacherID string, nq NewQuiz) (Quiz, error) {
	now := svc.now()
	return svc.repo.CreateQuiz(ctx, Quiz{
		ID:          uuid.New().String(),
		TeacherID:   teacherID,
		Title:       nq.Title,
		Description: nq.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// getOwnedQuiz returns the quiz only to the teacher who created it.
func (svc *Service) getOwnedQuiz(ctx context.Context, teacherID, quizID string) (Quiz, error) {
	qz, err := svc.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return Quiz{}, err
	}
	if qz.TeacherID != teacherID {
		return Quiz{}, ErrNotFound
	}
	return qz, nil
}

func (svc *Service) CreateQuestion(ctx context.Context, teacherID, quizID string, nq NewQuestion) (Question, error) {
	if _, err := svc.getOwnedQuiz(ctx, teacherID, quizID); err != nil {
		return Question{}, err
	}
	questions, err := svc.repo.GetQuestions(ctx, quizID)
	if err != nil {
		return Question{}, errors.Wrap(err, "getting questions")
	}

	pos := 0
	if n := len(questions); n > 0 {
		pos = questions[n-1].Position + 1
	}
	if nq.Position != nil {
		pos = *nq.Position
		for _, q := range questions {
			if q.Position == pos {
				return Question{}, core.NewValidationError(
					errPositionTaken, core.FieldError{Field: "position", Error: errPositionTaken.Error()},
				)
			}
		}
	}

	return svc.repo.CreateQuestion(ctx, Question{
		ID:        uuid.New().String(),
		QuizID:    quizID,
		Text:      nq.Text,
		Position:  pos,
		CreatedAt: svc.now(),
	})
}

func (svc *Service) CreateAnswer(ctx context.Context, teacherID, questionID string, na NewAnswer) (Answer, error) {
	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return Answer{}, err
	}
	if _, err = svc.getOwnedQuiz(ctx, teacherID, q.QuizID); err != nil {
		return Answer{}, err
	}
	return svc.repo.CreateAnswer(ctx, Answer{
		ID:         uuid.New().String(),
		QuestionID: questionID,
		Text:       na.Text,
		IsCorrect:  na.IsCorrect,
		CreatedAt:  svc.now(),
	})
}

// GetQuizDetail returns the quiz with its questions and answers, correctness included, to its teacher.
func (svc *Service) GetQuizDetail(ctx context.Context, teacherID, quizID string) (QuizDetail, error) {
	qz, err := svc.getOwnedQuiz(ctx, teacherID, quizID)
	if err != nil {
		return QuizDetail{}, err
	}
	questions, err := svc.repo.GetQuestions(ctx, quizID)
	if err != nil {
		return QuizDetail{}, errors.Wrap(err, "getting questions")
	}

	detail := QuizDetail{Quiz: qz, Questions: make([]QuestionDetail, 0, len(questions))}
	for _, q := range questions {
		answers, err := svc.repo.GetAnswers(ctx, q.ID)
		if err != nil {
			return QuizDetail{}, errors.Wrap(err, "getting answers")
		}
		if answers == nil {
			answers = []Answer{}
		}
		detail.Questions = append(detail.Questions, QuestionDetail{Question: q, Answers: answers})
	}
	return detail, nil
}

func (svc *Service) ListQuizzes(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Quiz, error) {
	return svc.repo.FilterQuizzes(ctx, filter, orderings)
}

// GetStudentResult returns the latest result of a student for a quiz.
func (svc *Service) GetStudentResult(ctx context.Context, studentID, quizID string) (Result, error) {
	return svc.results.GetLatestResult(ctx, studentID, quizID)
}

// GetCompletedQuizzes returns every result of a student, newest first.
func (svc *Service) GetCompletedQuizzes(ctx context.Context, studentID string) ([]Result, error) {
	return svc.results.ListStudentResults(ctx, studentID)
}
