package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/quiz"
)

var quizOrderings = map[string]string{
	"title":      "title",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type quizRow struct {
	ID          string    `db:"id"`
	TeacherID   string    `db:"teacher_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row quizRow) unboil() quiz.Quiz {
	return quiz.Quiz{
		ID:          row.ID,
		TeacherID:   row.TeacherID,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type questionRow struct {
	ID        string    `db:"id"`
	QuizID    string    `db:"quiz_id"`
	Text      string    `db:"text"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

func (row questionRow) unboil() quiz.Question {
	return quiz.Question{ID: row.ID, QuizID: row.QuizID, Text: row.Text, Position: row.Position, CreatedAt: row.CreatedAt.UTC()}
}

type answerRow struct {
	ID         string    `db:"id"`
	QuestionID string    `db:"question_id"`
	Text       string    `db:"text"`
	IsCorrect  bool      `db:"is_correct"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row answerRow) unboil() quiz.Answer {
	return quiz.Answer{ID: row.ID, QuestionID: row.QuestionID, Text: row.Text, IsCorrect: row.IsCorrect, CreatedAt: row.CreatedAt.UTC()}
}

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *sqlx.DB) *quizRepository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	var row quizRow
	q := repo.db.Rebind("SELECT id, teacher_id, title, description, created_at, updated_at FROM quizzes WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return quiz.Quiz{}, trapNoRowsErr(err, quiz.ErrNotFound)
	}
	return row.unboil(), nil
}

func (repo *quizRepository) GetQuestions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	var rows []questionRow
	q := repo.db.Rebind("SELECT id, quiz_id, text, position, created_at FROM questions WHERE quiz_id = ? ORDER BY position")
	if err := repo.db.SelectContext(ctx, &rows, q, quizID); err != nil {
		return nil, err
	}
	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.unboil())
	}
	return questions, nil
}

func (repo *quizRepository) GetQuestion(ctx context.Context, id string) (quiz.Question, error) {
	var row questionRow
	q := repo.db.Rebind("SELECT id, quiz_id, text, position, created_at FROM questions WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return quiz.Question{}, trapNoRowsErr(err, quiz.ErrNotFound)
	}
	return row.unboil(), nil
}

func (repo *quizRepository) GetAnswers(ctx context.Context, questionID string) ([]quiz.Answer, error) {
	var rows []answerRow
	q := repo.db.Rebind("SELECT id, question_id, text, is_correct, created_at FROM answers WHERE question_id = ? ORDER BY created_at, id")
	if err := repo.db.SelectContext(ctx, &rows, q, questionID); err != nil {
		return nil, err
	}
	answers := make([]quiz.Answer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, row.unboil())
	}
	return answers, nil
}

func (repo *quizRepository) GetAnswer(ctx context.Context, id string) (quiz.Answer, error) {
	var row answerRow
	q := repo.db.Rebind("SELECT id, question_id, text, is_correct, created_at FROM answers WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return quiz.Answer{}, trapNoRowsErr(err, quiz.ErrNotFound)
	}
	return row.unboil(), nil
}

func (repo *quizRepository) CreateQuiz(ctx context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	q := "INSERT INTO quizzes (id, teacher_id, title, description, created_at, updated_at) " +
		"VALUES (:id, :teacher_id, :title, :description, :created_at, :updated_at)"
	row := quizRow{
		ID: qz.ID, TeacherID: qz.TeacherID, Title: qz.Title, Description: qz.Description,
		CreatedAt: qz.CreatedAt.UTC(), UpdatedAt: qz.UpdatedAt.UTC(),
	}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return quiz.Quiz{}, err
	}
	return qz, nil
}

func (repo *quizRepository) CreateQuestion(ctx context.Context, qn quiz.Question) (quiz.Question, error) {
	q := "INSERT INTO questions (id, quiz_id, text, position, created_at) VALUES (:id, :quiz_id, :text, :position, :created_at)"
	row := questionRow{ID: qn.ID, QuizID: qn.QuizID, Text: qn.Text, Position: qn.Position, CreatedAt: qn.CreatedAt.UTC()}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return quiz.Question{}, err
	}
	return qn, nil
}

func (repo *quizRepository) CreateAnswer(ctx context.Context, a quiz.Answer) (quiz.Answer, error) {
	q := "INSERT INTO answers (id, question_id, text, is_correct, created_at) VALUES (:id, :question_id, :text, :is_correct, :created_at)"
	row := answerRow{ID: a.ID, QuestionID: a.QuestionID, Text: a.Text, IsCorrect: a.IsCorrect, CreatedAt: a.CreatedAt.UTC()}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return quiz.Answer{}, err
	}
	return a, nil
}

func (repo *quizRepository) FilterQuizzes(ctx context.Context, filter quiz.QueryFilter, orderings []core.DBOrdering) ([]quiz.Quiz, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.TeacherID != "" {
		conds = append(conds, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.Search != "" {
		conds = append(conds, `LOWER(title) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Search))
	}

	q := "SELECT id, teacher_id, title, description, created_at, updated_at FROM quizzes"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY " + core.OrderByClause(orderings, quizOrderings, "created_at DESC")

	var rows []quizRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	quizzes := make([]quiz.Quiz, 0, len(rows))
	for _, row := range rows {
		quizzes = append(quizzes, row.unboil())
	}
	return quizzes, nil
}
