package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/user"
)

const (
	recentPeriod     = 7 * 24 * time.Hour
	topTeachersLimit = 5
	latestPostsLimit = 10
)

var ErrNotFound = core.NewNotFoundError("blog post")

type (
	Repository interface {
		CreatePost(ctx context.Context, p Post) (Post, error)
		// GetPost returns the post with id, or ErrNotFound.
		GetPost(ctx context.Context, id string) (Post, error)
		UpdatePost(ctx context.Context, p Post) (Post, error)
		// DeletePost returns ErrNotFound when no post has id.
		DeletePost(ctx context.Context, id string) error
		FilterPosts(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Post, error)
		// CountPostsByTeacher returns the teachers having posts, most posts first.
		CountPostsByTeacher(ctx context.Context) ([]TeacherPostCount, error)
	}

	UserGetter interface {
		GetTeacher(ctx context.Context, id string) (user.User, error)
	}
)

// Service manages teacher blogs. Only the author of a post may edit or delete it.
type Service struct {
	repo    Repository
	users   UserGetter
	nowFunc func() time.Time
}

func NewService(repo Repository, users UserGetter) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		nowFunc: time.Now,
	}
}

func (svc *Service) now() time.Time {
	return svc.nowFunc().UTC()
}

func (svc *Service) CreatePost(ctx context.Context, teacherID string, np NewPost) (Post, error) {
	if _, err := svc.users.GetTeacher(ctx, teacherID); err != nil {
		return Post{}, errors.Wrap(err, "getting teacher")
	}
	now := svc.now()
	return svc.repo.CreatePost(ctx, Post{
		ID:        uuid.New().String(),
		TeacherID: teacherID,
		Title:     np.Title,
		Content:   np.Content,
		URL:       np.URL,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// getOwnedPost hides the posts of other teachers behind ErrNotFound.
func (svc *Service) getOwnedPost(ctx context.Context, teacherID, postID string) (Post, error) {
	p, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return Post{}, err
	}
	if p.TeacherID != teacherID {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (svc *Service) UpdatePost(ctx context.Context, teacherID, postID string, np NewPost) (Post, error) {
	p, err := svc.getOwnedPost(ctx, teacherID, postID)
	if err != nil {
		return Post{}, errors.Wrap(err, "getting post")
	}
	p.Title = np.Title
	p.Content = np.Content
	p.URL = np.URL
	p.UpdatedAt = svc.now()
	return svc.repo.UpdatePost(ctx, p)
}

func (svc *Service) DeletePost(ctx context.Context, teacherID, postID string) error {
	if _, err := svc.getOwnedPost(ctx, teacherID, postID); err != nil {
		return errors.Wrap(err, "getting post")
	}
	return svc.repo.DeletePost(ctx, postID)
}

func (svc *Service) GetPost(ctx context.Context, id string) (Post, error) {
	return svc.repo.GetPost(ctx, id)
}

func (svc *Service) ListPosts(ctx context.Context, filter QueryFilter, orderings []core.DBOrdering) ([]Post, error) {
	return svc.repo.FilterPosts(ctx, filter, orderings)
}

// ListTeacherPosts returns the posts of an active teacher, newest first.
func (svc *Service) ListTeacherPosts(ctx context.Context, teacherID string) ([]Post, error) {
	if _, err := svc.users.GetTeacher(ctx, teacherID); err != nil {
		return nil, errors.Wrap(err, "getting teacher")
	}
	return svc.repo.FilterPosts(ctx, QueryFilter{TeacherID: teacherID}, nil)
}

// GetTeacherPosts returns the posts of a teacher with the number written since the start of the month.
func (svc *Service) GetTeacherPosts(ctx context.Context, teacherID string) (TeacherPosts, error) {
	posts, err := svc.repo.FilterPosts(ctx, QueryFilter{TeacherID: teacherID}, nil)
	if err != nil {
		return TeacherPosts{}, errors.Wrap(err, "filtering posts")
	}
	now := svc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	tp := TeacherPosts{Posts: posts, Total: len(posts)}
	for _, p := range posts {
		if !p.CreatedAt.Before(monthStart) {
			tp.ThisMonth++
		}
	}
	return tp, nil
}

func (svc *Service) GetStats(ctx context.Context) (Stats, error) {
	posts, err := svc.repo.FilterPosts(ctx, QueryFilter{}, nil)
	if err != nil {
		return Stats{}, errors.Wrap(err, "filtering posts")
	}
	counts, err := svc.repo.CountPostsByTeacher(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting posts by teacher")
	}

	now := svc.now()
	stats := Stats{
		TotalPosts:        len(posts),
		TeachersWithPosts: len(counts),
		TopTeachers:       counts,
		LatestPosts:       posts,
		GeneratedAt:       now,
	}
	if len(stats.TopTeachers) > topTeachersLimit {
		stats.TopTeachers = stats.TopTeachers[:topTeachersLimit]
	}
	if len(stats.LatestPosts) > latestPostsLimit {
		stats.LatestPosts = stats.LatestPosts[:latestPostsLimit]
	}
	since := now.Add(-recentPeriod)
	for _, p := range posts {
		if !p.CreatedAt.Before(since) {
			stats.RecentPosts++
		}
	}
	return stats, nil
}

// GetArchive counts posts per month, newest month first.
func (svc *Service) GetArchive(ctx context.Context) (Archive, error) {
	posts, err := svc.repo.FilterPosts(ctx, QueryFilter{}, nil)
	if err != nil {
		return Archive{}, errors.Wrap(err, "filtering posts")
	}

	// posts come newest first, so months and years come out in order
	archive := Archive{Months: []ArchiveMonth{}, Years: []string{}}
	for _, p := range posts {
		created := p.CreatedAt.UTC()
		month, year := created.Format("2006-01"), created.Format("2006")
		if n := len(archive.Months); n > 0 && archive.Months[n-1].Month == month {
			archive.Months[n-1].PostCount++
			continue
		}
		archive.Months = append(archive.Months, ArchiveMonth{Year: year, Month: month, PostCount: 1})
		if n := len(archive.Years); n == 0 || archive.Years[n-1] != year {
			archive.Years = append(archive.Years, year)
		}
	}
	return archive, nil
}
