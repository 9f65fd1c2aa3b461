package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/quiz"
	"github.com/nexclass/nexclass/core/user"
	"github.com/nexclass/nexclass/storage/database"
)

// OpenDB opens a migrated in-memory SQLite database, closed when the test ends.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(core.NewTestConfig())
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateQuiz creates a quiz of teacherID with one question per entry of questions.
// Each entry lists the correctness of the answers of that question.
func CreateQuiz(t *testing.T, repo quiz.Repository, teacherID, title string, questions ...[]bool) quiz.QuizDetail {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	qz, err := repo.CreateQuiz(ctx, quiz.Quiz{
		ID:        uuid.New().String(),
		TeacherID: teacherID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createQuiz() failed: %v", err)
	}

	detail := quiz.QuizDetail{Quiz: qz, Questions: make([]quiz.QuestionDetail, 0, len(questions))}
	for i, answers := range questions {
		q, err := repo.CreateQuestion(ctx, quiz.Question{
			ID:        uuid.New().String(),
			QuizID:    qz.ID,
			Text:      fmt.Sprintf("Question %d", i+1),
			Position:  i,
			CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("createQuestion() failed: %v", err)
		}

		qd := quiz.QuestionDetail{Question: q, Answers: make([]quiz.Answer, 0, len(answers))}
		for j, correct := range answers {
			a, err := repo.CreateAnswer(ctx, quiz.Answer{
				ID:         uuid.New().String(),
				QuestionID: q.ID,
				Text:       fmt.Sprintf("Answer %d.%d", i+1, j+1),
				IsCorrect:  correct,
				CreatedAt:  now,
			})
			if err != nil {
				t.Fatalf("createAnswer() failed: %v", err)
			}
			qd.Answers = append(qd.Answers, a)
		}
		detail.Questions = append(detail.Questions, qd)
	}
	return detail
}

// AnswerID returns the ID of the first answer of the question at index with the given correctness.
func AnswerID(t *testing.T, detail quiz.QuizDetail, index int, correct bool) string {
	t.Helper()

	for _, a := range detail.Questions[index].Answers {
		if a.IsCorrect == correct {
			return a.ID
		}
	}
	t.Fatalf("answerID(): question %d has no answer with IsCorrect=%v", index, correct)
	return ""
}
