package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
)

const (
	cacheKeyCourses = "catalog:courses"
	cacheKeyBooks   = "catalog:books"
	cacheTTL        = 5 * time.Minute

	downloadURLTTL = 15 * time.Minute
)

type Service struct {
	repo       Repository
	cache      Cache
	downloader Downloader
	logger     *slog.Logger
}

func NewService(repo Repository, cache Cache, downloader Downloader, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		downloader: downloader,
		logger:     logger,
	}
}

func (s *Service) ListCourses(ctx context.Context) ([]*catalogdm.Course, error) {
	if s.cache != nil {
		var cached []*catalogdm.Course
		if err := s.cache.GetJSON(ctx, cacheKeyCourses, &cached); err == nil {
			return cached, nil
		}
	}

	courses, err := s.repo.ListPublishedCourses()
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKeyCourses, courses, cacheTTL); err != nil {
			s.logger.Warn("failed to cache course listing", "error", err)
		}
	}

	return courses, nil
}

func (s *Service) GetCourse(id int64) (*catalogdm.Course, error) {
	course, err := s.repo.GetCourse(id)
	if err != nil {
		return nil, internal.ErrCourseNotFound
	}
	return course, nil
}

func (s *Service) CreateCourse(ctx context.Context, dto *CourseDTO) (*catalogdm.Course, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	course := &catalogdm.Course{
		TitleAr:       dto.TitleAr,
		TitleEn:       dto.TitleEn,
		DescriptionAr: dto.DescriptionAr,
		DescriptionEn: dto.DescriptionEn,
		PriceHalalas:  dto.PriceHalalas,
		ConsultantID:  dto.ConsultantID,
		IsPublished:   dto.IsPublished,
	}
	if dto.CoverImageURL != "" {
		course.CoverImageURL = &dto.CoverImageURL
	}

	if err := s.repo.CreateCourse(course); err != nil {
		s.logger.Error("failed to create course", "error", err, "title_ar", dto.TitleAr)
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.invalidate(ctx, cacheKeyCourses)
	s.logger.Info("course created", "course_id", course.ID, "title_ar", course.TitleAr)
	return course, nil
}

func (s *Service) UpdateCourse(ctx context.Context, id int64, dto *CourseDTO) (*catalogdm.Course, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	course, err := s.repo.GetCourse(id)
	if err != nil {
		return nil, internal.ErrCourseNotFound
	}

	course.TitleAr = dto.TitleAr
	course.TitleEn = dto.TitleEn
	course.DescriptionAr = dto.DescriptionAr
	course.DescriptionEn = dto.DescriptionEn
	course.PriceHalalas = dto.PriceHalalas
	course.ConsultantID = dto.ConsultantID
	course.IsPublished = dto.IsPublished
	if dto.CoverImageURL != "" {
		course.CoverImageURL = &dto.CoverImageURL
	}

	if err := s.repo.UpdateCourse(course); err != nil {
		s.logger.Error("failed to update course", "error", err, "course_id", id)
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.invalidate(ctx, cacheKeyCourses)
	return course, nil
}

func (s *Service) MyCourses(userID int64) ([]*catalogdm.Course, error) {
	return s.repo.ListCoursesForStudent(userID)
}

func (s *Service) ListBooks(ctx context.Context) ([]*catalogdm.Book, error) {
	if s.cache != nil {
		var cached []*catalogdm.Book
		if err := s.cache.GetJSON(ctx, cacheKeyBooks, &cached); err == nil {
			return cached, nil
		}
	}

	books, err := s.repo.ListPublishedBooks()
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKeyBooks, books, cacheTTL); err != nil {
			s.logger.Warn("failed to cache book listing", "error", err)
		}
	}

	return books, nil
}

func (s *Service) GetBook(id int64) (*catalogdm.Book, error) {
	book, err := s.repo.GetBook(id)
	if err != nil {
		return nil, internal.ErrBookNotFound
	}
	return book, nil
}

func (s *Service) CreateBook(ctx context.Context, dto *BookDTO) (*catalogdm.Book, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	book := &catalogdm.Book{
		TitleAr:       dto.TitleAr,
		TitleEn:       dto.TitleEn,
		DescriptionAr: dto.DescriptionAr,
		DescriptionEn: dto.DescriptionEn,
		AuthorName:    dto.AuthorName,
		PriceHalalas:  dto.PriceHalalas,
		FileKey:       dto.FileKey,
		IsPublished:   dto.IsPublished,
	}
	if dto.CoverImageURL != "" {
		book.CoverImageURL = &dto.CoverImageURL
	}

	if err := s.repo.CreateBook(book); err != nil {
		s.logger.Error("failed to create book", "error", err, "title_ar", dto.TitleAr)
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.invalidate(ctx, cacheKeyBooks)
	s.logger.Info("book created", "book_id", book.ID, "title_ar", book.TitleAr)
	return book, nil
}

func (s *Service) UpdateBook(ctx context.Context, id int64, dto *BookDTO) (*catalogdm.Book, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.GetBook(id)
	if err != nil {
		return nil, internal.ErrBookNotFound
	}

	book.TitleAr = dto.TitleAr
	book.TitleEn = dto.TitleEn
	book.DescriptionAr = dto.DescriptionAr
	book.DescriptionEn = dto.DescriptionEn
	book.AuthorName = dto.AuthorName
	book.PriceHalalas = dto.PriceHalalas
	book.IsPublished = dto.IsPublished
	if dto.FileKey != "" {
		book.FileKey = dto.FileKey
	}
	if dto.CoverImageURL != "" {
		book.CoverImageURL = &dto.CoverImageURL
	}

	if err := s.repo.UpdateBook(book); err != nil {
		s.logger.Error("failed to update book", "error", err, "book_id", id)
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	s.invalidate(ctx, cacheKeyBooks)
	return book, nil
}

func (s *Service) MyBooks(userID int64) ([]*catalogdm.Book, error) {
	return s.repo.ListBooksForUser(userID)
}

// BookDownloadURL checks ownership before presigning; unpublished books can
// still be downloaded by owners who bought them before unlisting.
func (s *Service) BookDownloadURL(ctx context.Context, userID, bookID int64) (string, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		return "", internal.ErrBookNotFound
	}

	owns, err := s.repo.OwnsBook(bookID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to check ownership: %w", err)
	}
	if !owns {
		s.logger.Warn("download denied: book not owned", "book_id", bookID, "user_id", userID)
		return "", internal.ErrNotOwned
	}

	if s.downloader == nil || book.FileKey == "" {
		return "", internal.NewInternalError("book file is not available", nil)
	}

	url, err := s.downloader.PresignedDownloadURL(book.FileKey, downloadURLTTL)
	if err != nil {
		s.logger.Error("failed to presign download", "error", err, "book_id", bookID)
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	return url, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed", "error", err, "keys", keys)
	}
}
