package quiz

import (
	"context"

	"github.com/nexclass/nexclass/core"
)

var ErrNotFound = core.NewNotFoundError("quiz")

type (
	// QuizStore reads quizzes, their questions and answers.
	QuizStore interface {
		GetQuiz(ctx context.Context, id string) (Quiz, error)
		// GetQuestions returns the questions of a quiz ordered by Position.
		GetQuestions(ctx context.Context, quizID string) ([]Question, error)
		GetAnswers(ctx context.Context, questionID string) ([]Answer, error)
		GetAnswer(ctx context.Context, id string) (Answer, error)
	}

	// Repository is the QuizStore plus the authoring operations.
	Repository interface {
		QuizStore

		CreateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		CreateAnswer(ctx context.Context, a Answer) (Answer, error)
		GetQuestion(ctx context.Context, id string) (Question, error)
		FilterQuizzes(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Quiz, error)
	}

	// SessionStore keeps small integer values per browser session.
	SessionStore interface {
		Get(ctx context.Context, sessionID, key string) (int, bool, error)
		Set(ctx context.Context, sessionID, key string, value int) error
		Delete(ctx context.Context, sessionID string, keys ...string) error
	}

	ResultStore interface {
		SaveResult(ctx context.Context, res Result) (Result, error)
		ExistsResult(ctx context.Context, studentID, quizID string) (bool, error)
		// GetLatestResult returns the most recently completed result, or ErrNotFound.
		GetLatestResult(ctx context.Context, studentID, quizID string) (Result, error)
		// ListStudentResults returns the results of a student, newest first.
		ListStudentResults(ctx context.Context, studentID string) ([]Result, error)
	}
)
