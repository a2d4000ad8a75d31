package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogpkg "github.com/mohamedahmedessam757/futurethinking-backend/internal/catalog"
	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalogpkg.Repository {
	return &CatalogRepository{
		db: db,
	}
}

func (r *CatalogRepository) ListPublishedCourses() ([]*catalogdm.Course, error) {
	var courses []*catalogdm.Course
	err := r.db.Table("courses").
		Where("is_published = ?", true).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CatalogRepository) GetCourse(id int64) (*catalogdm.Course, error) {
	var course catalogdm.Course
	if err := r.db.Table("courses").First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CatalogRepository) CreateCourse(course *catalogdm.Course) error {
	return r.db.Table("courses").Create(course).Error
}

func (r *CatalogRepository) UpdateCourse(course *catalogdm.Course) error {
	return r.db.Table("courses").Save(course).Error
}

func (r *CatalogRepository) ListCoursesForStudent(studentID int64) ([]*catalogdm.Course, error) {
	var courses []*catalogdm.Course
	err := r.db.Table("courses").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID).
		Order("enrollments.created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CatalogRepository) ListPublishedBooks() ([]*catalogdm.Book, error) {
	var books []*catalogdm.Book
	err := r.db.Table("books").
		Where("is_published = ?", true).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

func (r *CatalogRepository) GetBook(id int64) (*catalogdm.Book, error) {
	var book catalogdm.Book
	if err := r.db.Table("books").First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *CatalogRepository) CreateBook(book *catalogdm.Book) error {
	return r.db.Table("books").Create(book).Error
}

func (r *CatalogRepository) UpdateBook(book *catalogdm.Book) error {
	return r.db.Table("books").Save(book).Error
}

func (r *CatalogRepository) ListBooksForUser(userID int64) ([]*catalogdm.Book, error) {
	var books []*catalogdm.Book
	err := r.db.Table("books").
		Joins("JOIN book_ownerships ON book_ownerships.book_id = books.id").
		Where("book_ownerships.user_id = ?", userID).
		Order("book_ownerships.created_at DESC").
		Find(&books).Error
	return books, err
}

func (r *CatalogRepository) OwnsBook(bookID, userID int64) (bool, error) {
	var count int64
	err := r.db.Table("book_ownerships").
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Count(&count).Error
	return count > 0, err
}

// InsertEnrollment reports whether a new row was written. The unique index on
// (course_id, student_id) makes replays a no-op, so callers only bump revenue
// counters on a true return.
func (r *CatalogRepository) InsertEnrollment(enrollment *catalogdm.Enrollment) (bool, error) {
	res := r.db.Table("enrollments").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(enrollment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CatalogRepository) InsertOwnership(ownership *catalogdm.BookOwnership) (bool, error) {
	res := r.db.Table("book_ownerships").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "book_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(ownership)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CatalogRepository) AddCourseRevenue(courseID, amountHalalas int64) error {
	return r.db.Table("courses").
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"total_revenue":  gorm.Expr("total_revenue + ?", amountHalalas),
			"enrolled_count": gorm.Expr("enrolled_count + 1"),
		}).Error
}
