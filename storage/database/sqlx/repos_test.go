package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/blog"
	"github.com/nexclass/nexclass/core/quiz"
	"github.com/nexclass/nexclass/core/rating"
	"github.com/nexclass/nexclass/core/user"
	sqlxrepos "github.com/nexclass/nexclass/storage/database/sqlx"
	"github.com/nexclass/nexclass/tests"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func TestUserRepository(t *testing.T) {
	repo := sqlxrepos.NewUserRepository(testutil.OpenDB(t))
	ctx := context.Background()

	hero := testutil.CreateUser(t, repo, "Hero", "hero", "hero@test.cd", "Passw0rd!x", []string{user.RoleStudent}, true, t0)
	teacher := testutil.CreateUser(t, repo, "Mrs Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher, user.RoleAdmin}, true, t0.Add(time.Hour))
	gone := testutil.CreateUser(t, repo, "Gone", "gone", "gone@test.cd", "", nil, false, t0.Add(2*time.Hour))

	got, err := repo.GetUserByID(ctx, hero.ID)
	require.NoError(t, err)
	assert.Equal(t, hero, got)
	assert.NoError(t, got.CheckPassword("Passw0rd!x"))

	got, err = repo.GetUserByUsernameOrEmail(ctx, "teacher@test.cd")
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleTeacher, user.RoleAdmin}, got.Roles)

	got, err = repo.GetUserByID(ctx, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Roles)
	assert.True(t, got.LastLogin.IsZero())

	_, err = repo.GetUserByID(ctx, "lol")
	assert.Equal(t, user.ErrNotFound, err)

	assert.Equal(t, user.ErrUsernameExists, repo.CheckUniqueness(ctx, "hero", "x@test.cd"))
	assert.Equal(t, user.ErrEmailExists, repo.CheckUniqueness(ctx, "x", "hero@test.cd"))
	assert.NoError(t, repo.CheckUniqueness(ctx, "hero", "hero@test.cd", hero.ID))
	assert.NoError(t, repo.CheckUniqueness(ctx, "x", "x@test.cd"))

	tests := []struct {
		name      string
		filter    user.QueryFilter
		orderings []core.DBOrdering
		want      []string
	}{
		{name: "all, newest first", want: []string{gone.ID, teacher.ID, hero.ID}},
		{name: "search", filter: user.QueryFilter{Search: "TEACH"}, want: []string{teacher.ID}},
		{name: "inactive", filter: user.QueryFilter{IsActive: boolPtr(false)}, want: []string{gone.ID}},
		{name: "roles", filter: user.QueryFilter{Roles: []string{user.RoleStudent, user.RoleAdmin}}, want: []string{teacher.ID, hero.ID}},
		{
			name: "ordered by username", filter: user.QueryFilter{IsActive: boolPtr(true)},
			orderings: []core.DBOrdering{{Field: "username", Ascending: true}}, want: []string{hero.ID, teacher.ID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := repo.FilterUsers(ctx, tt.filter, tt.orderings)
			require.NoError(t, err)
			ids := make([]string, 0, len(users))
			for _, usr := range users {
				ids = append(ids, usr.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	hero.LastLogin = t0.Add(3 * time.Hour)
	hero.Name = "Super Hero"
	_, err = repo.UpdateUser(ctx, hero)
	require.NoError(t, err)
	got, err = repo.GetUserByID(ctx, hero.ID)
	require.NoError(t, err)
	assert.Equal(t, hero, got)

	_, err = repo.UpdateUser(ctx, user.User{ID: "lol"})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestQuizRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewQuizRepository(db)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	rivers, err := repo.CreateQuiz(ctx, quiz.Quiz{ID: "q1", TeacherID: teacher.ID, Title: "Rivers", CreatedAt: t0, UpdatedAt: t0})
	require.NoError(t, err)
	mountains, err := repo.CreateQuiz(ctx, quiz.Quiz{
		ID: "q2", TeacherID: teacher.ID, Title: "Mountains", Description: "Peaks", CreatedAt: t0.Add(time.Hour), UpdatedAt: t0.Add(time.Hour),
	})
	require.NoError(t, err)

	got, err := repo.GetQuiz(ctx, rivers.ID)
	require.NoError(t, err)
	assert.Equal(t, rivers, got)
	_, err = repo.GetQuiz(ctx, "lol")
	assert.Equal(t, quiz.ErrNotFound, err)

	second, err := repo.CreateQuestion(ctx, quiz.Question{ID: "qn2", QuizID: rivers.ID, Text: "Second", Position: 4, CreatedAt: t0})
	require.NoError(t, err)
	first, err := repo.CreateQuestion(ctx, quiz.Question{ID: "qn1", QuizID: rivers.ID, Text: "First", Position: 1, CreatedAt: t0})
	require.NoError(t, err)
	_, err = repo.CreateQuestion(ctx, quiz.Question{ID: "qn3", QuizID: rivers.ID, Text: "Clash", Position: 4, CreatedAt: t0})
	assert.Error(t, err, "position is unique per quiz")

	questions, err := repo.GetQuestions(ctx, rivers.ID)
	require.NoError(t, err)
	assert.Equal(t, []quiz.Question{first, second}, questions)

	questions, err = repo.GetQuestions(ctx, mountains.ID)
	require.NoError(t, err)
	assert.Empty(t, questions)

	gotQn, err := repo.GetQuestion(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, gotQn)
	_, err = repo.GetQuestion(ctx, "lol")
	assert.Equal(t, quiz.ErrNotFound, err)

	a1, err := repo.CreateAnswer(ctx, quiz.Answer{ID: "a1", QuestionID: first.ID, Text: "Nile", IsCorrect: true, CreatedAt: t0})
	require.NoError(t, err)
	a2, err := repo.CreateAnswer(ctx, quiz.Answer{ID: "a2", QuestionID: first.ID, Text: "Congo", CreatedAt: t0.Add(time.Second)})
	require.NoError(t, err)

	answers, err := repo.GetAnswers(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []quiz.Answer{a1, a2}, answers)

	gotAns, err := repo.GetAnswer(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, a2, gotAns)
	_, err = repo.GetAnswer(ctx, "lol")
	assert.Equal(t, quiz.ErrNotFound, err)

	tests := []struct {
		name      string
		filter    quiz.QueryFilter
		orderings []core.DBOrdering
		want      []quiz.Quiz
	}{
		{name: "newest first", want: []quiz.Quiz{mountains, rivers}},
		{name: "by title", orderings: []core.DBOrdering{{Field: "title", Ascending: true}}, want: []quiz.Quiz{mountains, rivers}},
		{name: "search", filter: quiz.QueryFilter{Search: "riv"}, want: []quiz.Quiz{rivers}},
		{name: "other teacher", filter: quiz.QueryFilter{TeacherID: "lol"}, want: []quiz.Quiz{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quizzes, err := repo.FilterQuizzes(ctx, tt.filter, tt.orderings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, quizzes)
		})
	}
}

func TestResultRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	quizRepo := sqlxrepos.NewQuizRepository(db)
	repo := sqlxrepos.NewResultRepository(db)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.cd", "", []string{user.RoleStudent}, true)
	qz1 := testutil.CreateQuiz(t, quizRepo, teacher.ID, "One", []bool{true})
	qz2 := testutil.CreateQuiz(t, quizRepo, teacher.ID, "Two", []bool{true})

	ok, err := repo.ExistsResult(ctx, student.ID, qz1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = repo.GetLatestResult(ctx, student.ID, qz1.ID)
	assert.Equal(t, quiz.ErrNotFound, err)

	save := func(id, quizID string, score int, completedAt time.Time) quiz.Result {
		res, err := repo.SaveResult(ctx, quiz.Result{
			ID: id, StudentID: student.ID, QuizID: quizID, Score: score, TotalQuestions: 1, CorrectAnswers: score / 100, CompletedAt: completedAt,
		})
		require.NoError(t, err)
		return res
	}
	r1 := save("r1", qz1.ID, 0, t0)
	r2 := save("r2", qz1.ID, 100, t0.Add(time.Minute))
	r3 := save("r3", qz2.ID, 100, t0.Add(2*time.Minute))

	ok, err = repo.ExistsResult(ctx, student.ID, qz1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	latest, err := repo.GetLatestResult(ctx, student.ID, qz1.ID)
	require.NoError(t, err)
	assert.Equal(t, r2, latest)

	results, err := repo.ListStudentResults(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, []quiz.Result{r3, r2, r1}, results)

	results, err = repo.ListStudentResults(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, []quiz.Result{}, results)
}

func TestRatingRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewRatingRepository(db)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	s1 := testutil.CreateUser(t, usrRepo, "S1", "s1", "s1@test.cd", "", []string{user.RoleStudent}, true)
	s2 := testutil.CreateUser(t, usrRepo, "S2", "s2", "s2@test.cd", "", []string{user.RoleStudent}, true)

	_, err := repo.GetRating(ctx, teacher.ID, s1.ID)
	assert.Equal(t, rating.ErrNotFound, err)
	_, err = repo.GetStats(ctx, teacher.ID)
	assert.Equal(t, rating.ErrNotFound, err)

	r1, err := repo.SaveRating(ctx, rating.Rating{
		ID: "r1", TeacherID: teacher.ID, StudentID: s1.ID, Stars: 5, Comment: "Great", CreatedAt: t0, UpdatedAt: t0,
	})
	require.NoError(t, err)
	r2, err := repo.SaveRating(ctx, rating.Rating{
		ID: "r2", TeacherID: teacher.ID, StudentID: s2.ID, Stars: 3, CreatedAt: t0.Add(time.Minute), UpdatedAt: t0.Add(time.Minute),
	})
	require.NoError(t, err)

	// updating keeps the row
	r1.Stars, r1.Comment, r1.UpdatedAt = 1, "", t0.Add(time.Hour)
	_, err = repo.SaveRating(ctx, r1)
	require.NoError(t, err)

	got, err := repo.GetRating(ctx, teacher.ID, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, r1, got)

	ratings, err := repo.ListTeacherRatings(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, []rating.Rating{r1, r2}, ratings)

	_, err = repo.SaveRating(ctx, rating.Rating{ID: "r3", TeacherID: teacher.ID, StudentID: s2.ID, Stars: 9, CreatedAt: t0, UpdatedAt: t0})
	assert.Error(t, err, "stars are checked")

	stats := rating.Stats{TeacherID: teacher.ID, RatingCount: 2, AverageRating: 2, UpdatedAt: t0}
	require.NoError(t, repo.SaveStats(ctx, stats))
	stats.RatingCount, stats.AverageRating, stats.UpdatedAt = 3, 2.33, t0.Add(time.Hour)
	require.NoError(t, repo.SaveStats(ctx, stats))

	gotStats, err := repo.GetStats(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, stats, gotStats)
}

func TestBlogRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewBlogRepository(db)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true, t0)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleTeacher}, true, t0)

	newPost := func(id, teacherID, title, content string, createdAt time.Time) blog.Post {
		p, err := repo.CreatePost(ctx, blog.Post{
			ID: id, TeacherID: teacherID, Title: title, Content: content, CreatedAt: createdAt, UpdatedAt: createdAt,
		})
		require.NoError(t, err)
		return p
	}
	first := newPost("p1", teacher.ID, "Fractions made easy", "Picture a pizza cut in 100% fair slices.", t0)
	second := newPost("p2", teacher.ID, "Geometry games", "Angles and shapes on the playground.", t0.Add(time.Hour))
	third := newPost("p3", other.ID, "Reading aloud", "Why reading aloud helps fractions stick.", t0.Add(2*time.Hour))

	got, err := repo.GetPost(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	_, err = repo.GetPost(ctx, "lol")
	assert.Equal(t, blog.ErrNotFound, err)

	_, err = repo.CreatePost(ctx, blog.Post{ID: "p4", TeacherID: "lol", Title: "x", Content: "x", CreatedAt: t0, UpdatedAt: t0})
	assert.Error(t, err, "unknown teacher")

	tests := []struct {
		name      string
		filter    blog.QueryFilter
		orderings []core.DBOrdering
		want      []blog.Post
	}{
		{name: "all, newest first", want: []blog.Post{third, second, first}},
		{name: "by teacher", filter: blog.QueryFilter{TeacherID: teacher.ID}, want: []blog.Post{second, first}},
		{name: "search title or content", filter: blog.QueryFilter{Search: "FRACTIONS"}, want: []blog.Post{third, first}},
		{name: "search is literal", filter: blog.QueryFilter{Search: "100%"}, want: []blog.Post{first}},
		{name: "ordered by title", orderings: []core.DBOrdering{{Field: "title", Ascending: true}}, want: []blog.Post{first, second, third}},
		{name: "no match", filter: blog.QueryFilter{Search: "lol"}, want: []blog.Post{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.FilterPosts(ctx, tt.filter, tt.orderings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, posts)
		})
	}

	counts, err := repo.CountPostsByTeacher(ctx)
	require.NoError(t, err)
	assert.Equal(t, []blog.TeacherPostCount{{TeacherID: teacher.ID, PostCount: 2}, {TeacherID: other.ID, PostCount: 1}}, counts)

	second.Title = "Geometry games, part 2"
	second.URL = "https://nexclass.test/geometry"
	second.UpdatedAt = t0.Add(3 * time.Hour)
	_, err = repo.UpdatePost(ctx, second)
	require.NoError(t, err)
	got, err = repo.GetPost(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = repo.UpdatePost(ctx, blog.Post{ID: "lol", UpdatedAt: t0})
	assert.Equal(t, blog.ErrNotFound, err)

	require.NoError(t, repo.DeletePost(ctx, first.ID))
	assert.Equal(t, blog.ErrNotFound, repo.DeletePost(ctx, first.ID))
	_, err = repo.GetPost(ctx, first.ID)
	assert.Equal(t, blog.ErrNotFound, err)
}
