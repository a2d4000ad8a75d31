package catalog

import (
	"context"
	"time"

	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
)

type Repository interface {
	ListPublishedCourses() ([]*catalogdm.Course, error)
	GetCourse(id int64) (*catalogdm.Course, error)
	CreateCourse(c *catalogdm.Course) error
	UpdateCourse(c *catalogdm.Course) error
	ListCoursesForStudent(studentID int64) ([]*catalogdm.Course, error)

	ListPublishedBooks() ([]*catalogdm.Book, error)
	GetBook(id int64) (*catalogdm.Book, error)
	CreateBook(b *catalogdm.Book) error
	UpdateBook(b *catalogdm.Book) error
	ListBooksForUser(userID int64) ([]*catalogdm.Book, error)
	OwnsBook(bookID, userID int64) (bool, error)

	InsertEnrollment(e *catalogdm.Enrollment) (bool, error)
	AddCourseRevenue(courseID int64, amountHalalas int64) error
	InsertOwnership(o *catalogdm.BookOwnership) (bool, error)
}

// Cache is the slice of the redis wrapper the catalog needs; nil disables
// caching entirely.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Downloader interface {
	PresignedDownloadURL(key string, expiration time.Duration) (string, error)
}

type ServiceAPI interface {
	ListCourses(ctx context.Context) ([]*catalogdm.Course, error)
	GetCourse(id int64) (*catalogdm.Course, error)
	CreateCourse(ctx context.Context, dto *CourseDTO) (*catalogdm.Course, error)
	UpdateCourse(ctx context.Context, id int64, dto *CourseDTO) (*catalogdm.Course, error)
	MyCourses(userID int64) ([]*catalogdm.Course, error)

	ListBooks(ctx context.Context) ([]*catalogdm.Book, error)
	GetBook(id int64) (*catalogdm.Book, error)
	CreateBook(ctx context.Context, dto *BookDTO) (*catalogdm.Book, error)
	UpdateBook(ctx context.Context, id int64, dto *BookDTO) (*catalogdm.Book, error)
	MyBooks(userID int64) ([]*catalogdm.Book, error)
	BookDownloadURL(ctx context.Context, userID, bookID int64) (string, error)
}
