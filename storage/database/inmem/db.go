// Package inmemdb keeps every repository in process memory. It backs tests and local demos.
package inmemdb

import (
	"sync"

	"github.com/nexclass/nexclass/core/blog"
	"github.com/nexclass/nexclass/core/quiz"
	"github.com/nexclass/nexclass/core/rating"
	"github.com/nexclass/nexclass/core/user"
)

// DB is a set of tables guarded by a single lock.
type DB struct {
	mu        sync.RWMutex
	users     []user.User
	quizzes   []quiz.Quiz
	questions []quiz.Question
	answers   []quiz.Answer
	results   []quiz.Result
	ratings   []rating.Rating
	stats     map[string]rating.Stats
	posts     []blog.Post
}

func NewDB() *DB {
	return &DB{stats: make(map[string]rating.Stats)}
}
