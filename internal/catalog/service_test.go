package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/catalog"

	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Module Suite")
}

// Mock repository for testing
type mockCatalogRepo struct {
	courses       map[int64]*catalogdm.Course
	books         map[int64]*catalogdm.Book
	owned         map[[2]int64]bool
	listCalls     int
	listBookCalls int
	listError     error
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		courses: make(map[int64]*catalogdm.Course),
		books:   make(map[int64]*catalogdm.Book),
		owned:   make(map[[2]int64]bool),
	}
}

func (m *mockCatalogRepo) ListPublishedCourses() ([]*catalogdm.Course, error) {
	m.listCalls++
	if m.listError != nil {
		return nil, m.listError
	}
	var out []*catalogdm.Course
	for _, c := range m.courses {
		if c.IsPublished {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetCourse(id int64) (*catalogdm.Course, error) {
	c, exists := m.courses[id]
	if !exists {
		return nil, errors.New("course not found")
	}
	return c, nil
}

func (m *mockCatalogRepo) CreateCourse(c *catalogdm.Course) error {
	c.ID = int64(len(m.courses) + 1)
	m.courses[c.ID] = c
	return nil
}

func (m *mockCatalogRepo) UpdateCourse(c *catalogdm.Course) error {
	m.courses[c.ID] = c
	return nil
}

func (m *mockCatalogRepo) ListCoursesForStudent(studentID int64) ([]*catalogdm.Course, error) {
	return nil, nil
}

func (m *mockCatalogRepo) ListPublishedBooks() ([]*catalogdm.Book, error) {
	m.listBookCalls++
	var out []*catalogdm.Book
	for _, b := range m.books {
		if b.IsPublished {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetBook(id int64) (*catalogdm.Book, error) {
	b, exists := m.books[id]
	if !exists {
		return nil, errors.New("book not found")
	}
	return b, nil
}

func (m *mockCatalogRepo) CreateBook(b *catalogdm.Book) error {
	b.ID = int64(len(m.books) + 1)
	m.books[b.ID] = b
	return nil
}

func (m *mockCatalogRepo) UpdateBook(b *catalogdm.Book) error {
	m.books[b.ID] = b
	return nil
}

func (m *mockCatalogRepo) ListBooksForUser(userID int64) ([]*catalogdm.Book, error) {
	return nil, nil
}

func (m *mockCatalogRepo) OwnsBook(bookID, userID int64) (bool, error) {
	return m.owned[[2]int64{bookID, userID}], nil
}

func (m *mockCatalogRepo) InsertEnrollment(e *catalogdm.Enrollment) (bool, error) {
	return true, nil
}

func (m *mockCatalogRepo) AddCourseRevenue(courseID int64, amountHalalas int64) error {
	return nil
}

func (m *mockCatalogRepo) InsertOwnership(o *catalogdm.BookOwnership) (bool, error) {
	return true, nil
}

// In-memory cache standing in for redis
type mockCache struct {
	entries  map[string][]byte
	getCalls int
	setError error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	m.getCalls++
	raw, exists := m.entries[key]
	if !exists {
		return errors.New("cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.setError != nil {
		return m.setError
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

type mockDownloader struct {
	lastKey      string
	presignError error
}

func (m *mockDownloader) PresignedDownloadURL(key string, expiration time.Duration) (string, error) {
	if m.presignError != nil {
		return "", m.presignError
	}
	m.lastKey = key
	return "https://storage.example.com/" + key + "?signed=1", nil
}

var _ = Describe("CatalogService", func() {
	var (
		service    *catalog.Service
		mockRepo   *mockCatalogRepo
		cache      *mockCache
		downloader *mockDownloader
		ctx        context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockCatalogRepo()
		cache = newMockCache()
		downloader = &mockDownloader{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = catalog.NewService(mockRepo, cache, downloader, logger)
		ctx = context.Background()
	})

	Describe("ListCourses", func() {
		BeforeEach(func() {
			mockRepo.courses[1] = &catalogdm.Course{ID: 1, TitleAr: "دورة", IsPublished: true}
		})

		Context("on a cold cache", func() {
			It("should read the datastore and fill the cache", func() {
				// When
				courses, err := service.ListCourses(ctx)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(courses).To(HaveLen(1))
				Expect(mockRepo.listCalls).To(Equal(1))
				Expect(cache.entries).To(HaveKey("catalog:courses"))
			})
		})

		Context("on a warm cache", func() {
			It("should skip the datastore", func() {
				// Given
				_, err := service.ListCourses(ctx)
				Expect(err).ToNot(HaveOccurred())

				// When
				courses, err := service.ListCourses(ctx)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(courses).To(HaveLen(1))
				Expect(mockRepo.listCalls).To(Equal(1))
			})
		})

		Context("when the cache write fails", func() {
			It("should still serve the listing", func() {
				// Given
				cache.setError = errors.New("redis down")

				// When
				courses, err := service.ListCourses(ctx)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(courses).To(HaveLen(1))
			})
		})

		Context("without a cache", func() {
			It("should go straight to the datastore", func() {
				// Given
				service = catalog.NewService(mockRepo, nil, downloader, slog.Default())

				// When
				courses, err := service.ListCourses(ctx)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(courses).To(HaveLen(1))
			})
		})
	})

	Describe("CreateCourse", func() {
		It("should invalidate the course listing cache", func() {
			// Given
			mockRepo.courses[1] = &catalogdm.Course{ID: 1, TitleAr: "دورة", IsPublished: true}
			_, err := service.ListCourses(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(cache.entries).To(HaveKey("catalog:courses"))

			// When
			created, err := service.CreateCourse(ctx, &catalog.CourseDTO{
				TitleAr:      "دورة جديدة",
				PriceHalalas: 19_900,
				IsPublished:  true,
			})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(created.ID).To(BeNumerically(">", 0))
			Expect(cache.entries).ToNot(HaveKey("catalog:courses"))
		})

		It("should reject a course without an Arabic title", func() {
			// When
			created, err := service.CreateCourse(ctx, &catalog.CourseDTO{PriceHalalas: 100})

			// Then
			Expect(err).To(HaveOccurred())
			Expect(created).To(BeNil())
		})
	})

	Describe("BookDownloadURL", func() {
		BeforeEach(func() {
			mockRepo.books[3] = &catalogdm.Book{ID: 3, TitleAr: "كتاب", FileKey: "books/scenario-handbook.pdf", IsPublished: true}
		})

		Context("when the user owns the book", func() {
			It("should presign the stored file key", func() {
				// Given
				mockRepo.owned[[2]int64{3, 42}] = true

				// When
				url, err := service.BookDownloadURL(ctx, 42, 3)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(url).To(ContainSubstring("books/scenario-handbook.pdf"))
				Expect(downloader.lastKey).To(Equal("books/scenario-handbook.pdf"))
			})
		})

		Context("when the user does not own the book", func() {
			It("should refuse with the ownership error", func() {
				// When
				url, err := service.BookDownloadURL(ctx, 42, 3)

				// Then
				Expect(err).To(MatchError(internal.ErrNotOwned))
				Expect(url).To(BeEmpty())
			})
		})

		Context("when the book does not exist", func() {
			It("should return not found", func() {
				// When
				_, err := service.BookDownloadURL(ctx, 42, 999)

				// Then
				Expect(err).To(MatchError(internal.ErrBookNotFound))
			})
		})

		Context("when the book has no stored file", func() {
			It("should report the file as unavailable", func() {
				// Given
				mockRepo.books[4] = &catalogdm.Book{ID: 4, TitleAr: "كتاب بلا ملف", IsPublished: true}
				mockRepo.owned[[2]int64{4, 42}] = true

				// When
				_, err := service.BookDownloadURL(ctx, 42, 4)

				// Then
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not available"))
			})
		})

		Context("when no storage backend is configured", func() {
			It("should report the file as unavailable", func() {
				// Given
				service = catalog.NewService(mockRepo, cache, nil, slog.Default())
				mockRepo.owned[[2]int64{3, 42}] = true

				// When
				_, err := service.BookDownloadURL(ctx, 42, 3)

				// Then
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
