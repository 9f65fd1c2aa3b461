package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nexclass/nexclass/core"
)

type Quiz struct {
	ID          string    `json:"id"`
	TeacherID   string    `json:"teacher_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Question belongs to exactly one Quiz; questions are played in Position order.
type Question struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quiz_id"`
	Text      string    `json:"text"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// Result is the permanent record of a finished attempt. It is never updated.
type Result struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	QuizID         string    `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	CompletedAt    time.Time `json:"completed_at"` // UTC
}

// AttemptSession is the progress of one browser session through one quiz.
// Index is the next question that has not been answered yet.
type AttemptSession struct {
	Index   int
	Correct int
}

// Attempt identifies who is playing: the authenticated student and their browser session.
type Attempt struct {
	StudentID string
	SessionID string
}

// AnswerOption is an Answer as shown to a student: without its correctness.
type AnswerOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is everything needed to display the current question.
type QuestionView struct {
	QuizID   string         `json:"quiz_id"`
	Index    int            `json:"index"`
	Number   int            `json:"number"` // 1-based
	Total    int            `json:"total"`
	Progress int            `json:"progress"`
	Question string         `json:"question"`
	Answers  []AnswerOption `json:"answers"`
}

// Step is the outcome of Controller.Resume: either the question to display or the final Result.
type Step struct {
	Complete bool
	Question *QuestionView
	Result   *Result
}

type QuestionDetail struct {
	Question
	Answers []Answer `json:"answers"`
}

type QuizDetail struct {
	Quiz
	Questions []QuestionDetail `json:"questions"`
}

// NewQuiz contains information needed to create a new Quiz.
type NewQuiz struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	nq.Description = core.CleanString(nq.Description)
	return validate.Struct(nq)
}

// NewQuestion contains information needed to add a Question to a Quiz.
// The question is appended when Position is not set.
type NewQuestion struct {
	Text     string `json:"text" validate:"required,notblank"`
	Position *int   `json:"position" validate:"omitempty,min=0"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	return validate.Struct(nq)
}

type NewAnswer struct {
	Text      string `json:"text" validate:"required,notblank"`
	IsCorrect bool   `json:"is_correct"`
}

func (na *NewAnswer) Validate(validate *validator.Validate) error {
	na.Text = core.CleanString(na.Text)
	return validate.Struct(na)
}

type QueryFilter struct {
	TeacherID string `query:"teacher_id"`
	Search    string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.Search = core.CleanString(qf.Search)
}
