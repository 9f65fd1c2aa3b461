package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Controller drives a student through the questions of a quiz, one request at a time.
// Progress lives in the SessionStore between requests; the finished attempt is saved in the ResultStore.
type Controller struct {
	quizzes  QuizStore
	sessions SessionStore
	results  ResultStore
	locks    *keyedMutex
	nowFunc  func() time.Time
}

func NewController(quizzes QuizStore, sessions SessionStore, results ResultStore) *Controller {
	return &Controller{
		quizzes:  quizzes,
		sessions: sessions,
		results:  results,
		locks:    newKeyedMutex(),
		nowFunc:  time.Now,
	}
}

func indexKey(quizID string) string   { return "quiz:" + quizID + ":index" }
func correctKey(quizID string) string { return "quiz:" + quizID + ":correct" }

// Resume returns the question at index, or completes the attempt once index reaches the number of questions.
// Displaying a question never changes the running correct count.
func (c *Controller) Resume(ctx context.Context, a Attempt, quizID string, index int) (Step, error) {
	if index < 0 {
		index = 0
	}
	defer c.locks.Lock(a.SessionID + "|" + quizID)()

	questions, err := c.getQuestions(ctx, quizID)
	if err != nil {
		return Step{}, err
	}
	total := len(questions)

	if index >= total {
		res, err := c.complete(ctx, a, quizID, total)
		if err != nil {
			return Step{}, errors.Wrap(err, "completing attempt")
		}
		return Step{Complete: true, Result: &res}, nil
	}

	if err = c.startAttempt(ctx, a, quizID, index); err != nil {
		return Step{}, err
	}

	question := questions[index]
	answers, err := c.quizzes.GetAnswers(ctx, question.ID)
	if err != nil {
		return Step{}, errors.Wrap(err, "getting answers")
	}
	options := make([]AnswerOption, 0, len(answers))
	for _, ans := range answers {
		options = append(options, AnswerOption{ID: ans.ID, Text: ans.Text})
	}

	return Step{
		Question: &QuestionView{
			QuizID:   quizID,
			Index:    index,
			Number:   index + 1,
			Total:    total,
			Progress: Progress(index, total),
			Question: question.Text,
			Answers:  options,
		},
	}, nil
}

// SubmitAnswer records the answer to the question at index and returns the index to resume at.
//
// An answer for a question that was already answered in this attempt is ignored, as is any answer
// arriving after the attempt was completed. The returned index is index+1 in every case.
func (c *Controller) SubmitAnswer(ctx context.Context, a Attempt, quizID string, index int, answerID string) (int, error) {
	defer c.locks.Lock(a.SessionID + "|" + quizID)()

	questions, err := c.getQuestions(ctx, quizID)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(questions) {
		return 0, ErrNotFound
	}

	answer, err := c.quizzes.GetAnswer(ctx, answerID)
	if err != nil {
		return 0, errors.Wrap(err, "getting answer")
	}
	if answer.QuestionID != questions[index].ID {
		return 0, ErrNotFound
	}
	next := index + 1

	att, ok, err := c.loadAttempt(ctx, a, quizID)
	if err != nil {
		return 0, err
	}
	if !ok {
		done, err := c.results.ExistsResult(ctx, a.StudentID, quizID)
		if err != nil {
			return 0, errors.Wrap(err, "checking result")
		}
		if done {
			return next, nil // late resubmission after completion
		}
	}
	if index < att.Index {
		return next, nil // replay
	}

	if answer.IsCorrect {
		att.Correct++
	}
	att.Index = next
	if err = c.saveAttempt(ctx, a, quizID, att); err != nil {
		return 0, err
	}
	return next, nil
}

// complete saves the Result of the attempt in progress and clears it.
// Without an attempt in progress the existing result is returned, so completing twice never saves twice.
func (c *Controller) complete(ctx context.Context, a Attempt, quizID string, total int) (Result, error) {
	att, inProgress, err := c.loadAttempt(ctx, a, quizID)
	if err != nil {
		return Result{}, err
	}
	if !inProgress {
		exists, err := c.results.ExistsResult(ctx, a.StudentID, quizID)
		if err != nil {
			return Result{}, errors.Wrap(err, "checking result")
		}
		if exists {
			res, err := c.results.GetLatestResult(ctx, a.StudentID, quizID)
			return res, errors.Wrap(err, "getting latest result")
		}
	}

	correct := att.Correct
	if correct > total {
		correct = total
	}

	// the attempt is cleared before the result is saved; a failed save puts it back
	if err = c.sessions.Delete(ctx, a.SessionID, indexKey(quizID), correctKey(quizID)); err != nil {
		return Result{}, errors.Wrap(err, "clearing attempt")
	}
	res, err := c.results.SaveResult(ctx, Result{
		ID:             uuid.New().String(),
		StudentID:      a.StudentID,
		QuizID:         quizID,
		Score:          Score(correct, total),
		TotalQuestions: total,
		CorrectAnswers: correct,
		CompletedAt:    c.nowFunc().UTC(),
	})
	if err != nil {
		if inProgress {
			if rerr := c.saveAttempt(ctx, a, quizID, att); rerr != nil {
				return Result{}, errors.Wrapf(err, "saving result (restoring attempt: %v)", rerr)
			}
		}
		return Result{}, errors.Wrap(err, "saving result")
	}
	return res, nil
}

// startAttempt creates the AttemptSession on first entry and never overwrites one in progress.
// Once a result exists, only the first question starts a new attempt: returning to a later
// question of a completed quiz leaves no state behind, so answers submitted from there are ignored.
func (c *Controller) startAttempt(ctx context.Context, a Attempt, quizID string, index int) error {
	_, ok, err := c.loadAttempt(ctx, a, quizID)
	if err != nil || ok {
		return err
	}
	if index > 0 {
		done, err := c.results.ExistsResult(ctx, a.StudentID, quizID)
		if err != nil {
			return errors.Wrap(err, "checking result")
		}
		if done {
			return nil
		}
	}
	return c.saveAttempt(ctx, a, quizID, AttemptSession{})
}

func (c *Controller) getQuestions(ctx context.Context, quizID string) ([]Question, error) {
	if _, err := c.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, errors.Wrap(err, "getting quiz")
	}
	questions, err := c.quizzes.GetQuestions(ctx, quizID)
	return questions, errors.Wrap(err, "getting questions")
}

func (c *Controller) loadAttempt(ctx context.Context, a Attempt, quizID string) (AttemptSession, bool, error) {
	idx, ok, err := c.sessions.Get(ctx, a.SessionID, indexKey(quizID))
	if err != nil || !ok {
		return AttemptSession{}, false, errors.Wrap(err, "reading attempt index")
	}
	correct, _, err := c.sessions.Get(ctx, a.SessionID, correctKey(quizID))
	if err != nil {
		return AttemptSession{}, false, errors.Wrap(err, "reading attempt correct count")
	}
	return AttemptSession{Index: idx, Correct: correct}, true, nil
}

func (c *Controller) saveAttempt(ctx context.Context, a Attempt, quizID string, att AttemptSession) error {
	if err := c.sessions.Set(ctx, a.SessionID, correctKey(quizID), att.Correct); err != nil {
		return errors.Wrap(err, "saving attempt correct count")
	}
	return errors.Wrap(c.sessions.Set(ctx, a.SessionID, indexKey(quizID), att.Index), "saving attempt index")
}
