package blog_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/blog"
	"github.com/nexclass/nexclass/core/user"
	emailsvc "github.com/nexclass/nexclass/services/email"
	inmemdb "github.com/nexclass/nexclass/storage/database/inmem"
	"github.com/nexclass/nexclass/tests"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type blogEnv struct {
	svc     *blog.Service
	repo    blog.Repository
	teacher user.User
	other   user.User
	student user.User
}

func newBlogEnv(t *testing.T) blogEnv {
	conf := core.NewTestConfig()
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	repo := inmemdb.NewBlogRepository(db)
	usrSvc := user.NewService(conf, usrRepo, emailsvc.NewConsoleServiceMock(conf, nopLogger{}))

	return blogEnv{
		svc:     blog.NewService(repo, usrSvc),
		repo:    repo,
		teacher: testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true),
		other:   testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleTeacher}, true),
		student: testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.cd", "", []string{user.RoleStudent}, true),
	}
}

func (env blogEnv) seed(t *testing.T, teacherID, title string, createdAt time.Time) blog.Post {
	t.Helper()
	p, err := env.repo.CreatePost(context.Background(), blog.Post{
		ID:        uuid.New().String(),
		TeacherID: teacherID,
		Title:     title,
		Content:   "Some content long enough to be a post.",
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	})
	require.NoError(t, err)
	return p
}

var validPost = blog.NewPost{
	Title:   "Fractions made easy",
	Content: "Three ways to picture a fraction in class.",
	URL:     "https://nexclass.test/fractions",
}

func TestNewPost_Validate(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	tests := []struct {
		name      string
		post      blog.NewPost
		wantField string
	}{
		{name: "valid", post: validPost},
		{name: "no url", post: blog.NewPost{Title: validPost.Title, Content: validPost.Content}},
		{name: "title required", post: blog.NewPost{Content: validPost.Content}, wantField: "title"},
		{name: "title too short", post: blog.NewPost{Title: " Tiny ", Content: validPost.Content}, wantField: "title"},
		{name: "content too short", post: blog.NewPost{Title: validPost.Title, Content: "Too short."}, wantField: "content"},
		{name: "invalid url", post: blog.NewPost{Title: validPost.Title, Content: validPost.Content, URL: "lol"}, wantField: "url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate(validate)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "err = %v", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.wantField, verrs[0].Field())
		})
	}
}

func TestService_CreatePost(t *testing.T) {
	env := newBlogEnv(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		teacherID string
		wantErr   bool
	}{
		{name: "unknown teacher", teacherID: "lol", wantErr: true},
		{name: "students cannot write", teacherID: env.student.ID, wantErr: true},
		{name: "teacher", teacherID: env.teacher.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := env.svc.CreatePost(ctx, tt.teacherID, validPost)
			if tt.wantErr {
				assert.True(t, core.IsNotFound(err), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, tt.teacherID, p.TeacherID)
			assert.Equal(t, validPost.Title, p.Title)
			assert.Equal(t, validPost.URL, p.URL)
			assert.False(t, p.CreatedAt.IsZero())

			got, err := env.svc.GetPost(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}
}

func TestService_ownership(t *testing.T) {
	env := newBlogEnv(t)
	ctx := context.Background()
	p, err := env.svc.CreatePost(ctx, env.teacher.ID, validPost)
	require.NoError(t, err)

	edit := blog.NewPost{Title: "Fractions, revisited", Content: "An updated take on fractions for class."}

	_, err = env.svc.UpdatePost(ctx, env.other.ID, p.ID, edit)
	assert.True(t, core.IsNotFound(err))
	_, err = env.svc.UpdatePost(ctx, env.teacher.ID, "lol", edit)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, core.IsNotFound(env.svc.DeletePost(ctx, env.other.ID, p.ID)))

	updated, err := env.svc.UpdatePost(ctx, env.teacher.ID, p.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, edit.Title, updated.Title)
	assert.Empty(t, updated.URL)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt))

	require.NoError(t, env.svc.DeletePost(ctx, env.teacher.ID, p.ID))
	_, err = env.svc.GetPost(ctx, p.ID)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, core.IsNotFound(env.svc.DeletePost(ctx, env.teacher.ID, p.ID)))
}

func TestService_ListPosts(t *testing.T) {
	env := newBlogEnv(t)
	ctx := context.Background()
	now := time.Now()
	older := env.seed(t, env.teacher.ID, "Fractions made easy", now.Add(-2*time.Hour))
	newer := env.seed(t, env.teacher.ID, "Geometry games", now.Add(-time.Hour))
	others := env.seed(t, env.other.ID, "Reading aloud", now)

	tests := []struct {
		name   string
		filter blog.QueryFilter
		want   []blog.Post
	}{
		{name: "all, newest first", want: []blog.Post{others, newer, older}},
		{name: "by teacher", filter: blog.QueryFilter{TeacherID: env.teacher.ID}, want: []blog.Post{newer, older}},
		{name: "search title", filter: blog.QueryFilter{Search: "GEOMETRY"}, want: []blog.Post{newer}},
		{name: "search content", filter: blog.QueryFilter{Search: "long enough"}, want: []blog.Post{others, newer, older}},
		{name: "no match", filter: blog.QueryFilter{Search: "lol"}, want: []blog.Post{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := env.svc.ListPosts(ctx, tt.filter, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, posts)
		})
	}

	posts, err := env.svc.ListPosts(ctx, blog.QueryFilter{}, []core.DBOrdering{{Field: "title", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, []blog.Post{older, newer, others}, posts)
}

func TestService_ListTeacherPosts(t *testing.T) {
	env := newBlogEnv(t)
	ctx := context.Background()
	p := env.seed(t, env.teacher.ID, "Fractions made easy", time.Now())

	_, err := env.svc.ListTeacherPosts(ctx, "lol")
	assert.True(t, core.IsNotFound(err))
	_, err = env.svc.ListTeacherPosts(ctx, env.student.ID)
	assert.True(t, core.IsNotFound(err))

	posts, err := env.svc.ListTeacherPosts(ctx, env.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, []blog.Post{p}, posts)

	posts, err = env.svc.ListTeacherPosts(ctx, env.other.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestService_GetTeacherPosts(t *testing.T) {
	env := newBlogEnv(t)
	ctx := context.Background()
	now := time.Now()
	env.seed(t, env.teacher.ID, "This month", now)
	env.seed(t, env.teacher.ID, "Long ago", now.AddDate(0, 0, -40))
	env.seed(t, env.other.ID, "Not mine", now)

	tp, err := env.svc.GetTeacherPosts(ctx, env.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, tp.Total)
	assert.Equal(t, 1, tp.ThisMonth)
	require.Len(t, tp.Posts, 2)
	assert.Equal(t, "This month", tp.Posts[0].Title)
}

func TestService_GetStats(t *testing.T) {
	env := newBlogEnv(t)
	ctx := context.Background()

	stats, err := env.svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPosts)
	assert.Empty(t, stats.TopTeachers)
	assert.Empty(t, stats.LatestPosts)

	now := time.Now()
	for i := 0; i < 11; i++ {
		env.seed(t, env.teacher.ID, "Post", now.AddDate(0, 0, -i).Add(-time.Minute))
	}
	env.seed(t, env.other.ID, "Other post", now.AddDate(0, 0, -30))

	stats, err = env.svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalPosts)
	assert.Equal(t, 2, stats.TeachersWithPosts)
	assert.Equal(t, 7, stats.RecentPosts) // today and the 6 days before
	assert.Equal(t, []blog.TeacherPostCount{
		{TeacherID: env.teacher.ID, PostCount: 11},
		{TeacherID: env.other.ID, PostCount: 1},
	}, stats.TopTeachers)
	require.Len(t, stats.LatestPosts, 10)
	assert.Equal(t, env.teacher.ID, stats.LatestPosts[0].TeacherID)
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestService_GetArchive(t *testing.T) {
	env := newBlogEnv(t)
	ctx := context.Background()

	archive, err := env.svc.GetArchive(ctx)
	require.NoError(t, err)
	assert.Empty(t, archive.Months)
	assert.Empty(t, archive.Years)

	env.seed(t, env.teacher.ID, "January", time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC))
	env.seed(t, env.teacher.ID, "December", time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC))
	env.seed(t, env.other.ID, "Also January", time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC))
	env.seed(t, env.other.ID, "March", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))

	archive, err = env.svc.GetArchive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []blog.ArchiveMonth{
		{Year: "2025", Month: "2025-03", PostCount: 1},
		{Year: "2025", Month: "2025-01", PostCount: 2},
		{Year: "2024", Month: "2024-12", PostCount: 1},
	}, archive.Months)
	assert.Equal(t, []string{"2025", "2024"}, archive.Years)
}
