package blog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nexclass/nexclass/core"
)

// Post is an article a teacher publishes on their blog.
type Post struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"` // optional reference link
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewPost contains what a teacher submits to write or edit a Post.
type NewPost struct {
	Title   string `json:"title" validate:"required,notblank,min=5,max=200"`
	Content string `json:"content" validate:"required,notblank,min=20"`
	URL     string `json:"url" validate:"omitempty,url,max=200"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	np.URL = core.CleanString(np.URL)
	return validate.Struct(np)
}

type QueryFilter struct {
	TeacherID string `query:"teacher"`
	Search    string `query:"search"` // matches title or content
}

func (qf *QueryFilter) Clean() {
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.Search = core.CleanString(qf.Search)
}

type TeacherPostCount struct {
	TeacherID string `json:"teacher_id"`
	PostCount int    `json:"post_count"`
}

type Stats struct {
	TotalPosts        int                `json:"total_posts"`
	TeachersWithPosts int                `json:"teachers_with_posts"`
	RecentPosts       int                `json:"recent_posts"` // last 7 days
	TopTeachers       []TeacherPostCount `json:"top_teachers"`
	LatestPosts       []Post             `json:"latest_posts"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// TeacherPosts is the blog of one teacher as seen by its author.
type TeacherPosts struct {
	Posts     []Post `json:"posts"`
	Total     int    `json:"total"`
	ThisMonth int    `json:"this_month"`
}

type ArchiveMonth struct {
	Year      string `json:"year"`  // 2006
	Month     string `json:"month"` // 2006-01
	PostCount int    `json:"post_count"`
}

type Archive struct {
	Months []ArchiveMonth `json:"months"`
	Years  []string       `json:"years"`
}
