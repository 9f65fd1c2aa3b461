package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nexclass/nexclass/core/quiz"
)

const resultColumns = "id, student_id, quiz_id, score, total_questions, correct_answers, completed_at"

type resultRow struct {
	ID             string    `db:"id"`
	StudentID      string    `db:"student_id"`
	QuizID         string    `db:"quiz_id"`
	Score          int       `db:"score"`
	TotalQuestions int       `db:"total_questions"`
	CorrectAnswers int       `db:"correct_answers"`
	CompletedAt    time.Time `db:"completed_at"`
}

func (row resultRow) unboil() quiz.Result {
	return quiz.Result{
		ID:             row.ID,
		StudentID:      row.StudentID,
		QuizID:         row.QuizID,
		Score:          row.Score,
		TotalQuestions: row.TotalQuestions,
		CorrectAnswers: row.CorrectAnswers,
		CompletedAt:    row.CompletedAt.UTC(),
	}
}

type resultRepository struct {
	db *sqlx.DB
}

var _ quiz.ResultStore = (*resultRepository)(nil)

func NewResultRepository(db *sqlx.DB) *resultRepository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) SaveResult(ctx context.Context, res quiz.Result) (quiz.Result, error) {
	q := "INSERT INTO quiz_results (" + resultColumns + ") " +
		"VALUES (:id, :student_id, :quiz_id, :score, :total_questions, :correct_answers, :completed_at)"
	row := resultRow{
		ID:             res.ID,
		StudentID:      res.StudentID,
		QuizID:         res.QuizID,
		Score:          res.Score,
		TotalQuestions: res.TotalQuestions,
		CorrectAnswers: res.CorrectAnswers,
		CompletedAt:    res.CompletedAt.UTC(),
	}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return quiz.Result{}, err
	}
	return res, nil
}

func (repo *resultRepository) ExistsResult(ctx context.Context, studentID, quizID string) (bool, error) {
	var count int
	q := repo.db.Rebind("SELECT COUNT(*) FROM quiz_results WHERE student_id = ? AND quiz_id = ?")
	if err := repo.db.GetContext(ctx, &count, q, studentID, quizID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *resultRepository) GetLatestResult(ctx context.Context, studentID, quizID string) (quiz.Result, error) {
	var row resultRow
	q := repo.db.Rebind("SELECT " + resultColumns + " FROM quiz_results WHERE student_id = ? AND quiz_id = ? " +
		"ORDER BY completed_at DESC LIMIT 1")
	if err := repo.db.GetContext(ctx, &row, q, studentID, quizID); err != nil {
		return quiz.Result{}, trapNoRowsErr(err, quiz.ErrNotFound)
	}
	return row.unboil(), nil
}

func (repo *resultRepository) ListStudentResults(ctx context.Context, studentID string) ([]quiz.Result, error) {
	var rows []resultRow
	q := repo.db.Rebind("SELECT " + resultColumns + " FROM quiz_results WHERE student_id = ? ORDER BY completed_at DESC")
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, err
	}
	results := make([]quiz.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.unboil())
	}
	return results, nil
}
