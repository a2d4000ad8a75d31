package catalog

import (
	"time"

	"gorm.io/datatypes"
)

type Course struct {
	ID             int64          `gorm:"primaryKey"`
	TitleAr        string         `gorm:"column:title_ar;not null"`
	TitleEn        string         `gorm:"column:title_en"`
	DescriptionAr  string         `gorm:"column:description_ar"`
	DescriptionEn  string         `gorm:"column:description_en"`
	PriceHalalas   int64          `gorm:"column:price_halalas;not null;default:0"`
	ConsultantID   *int64         `gorm:"column:consultant_id"`
	CoverImageURL  *string        `gorm:"column:cover_image_url"`
	Curriculum     datatypes.JSON `gorm:"column:curriculum;type:jsonb"`
	TotalRevenue   int64          `gorm:"column:total_revenue;not null;default:0"`
	EnrolledCount  int64          `gorm:"column:enrolled_count;not null;default:0"`
	IsPublished    bool           `gorm:"column:is_published;default:false"`
	CreatedAt      time.Time      `gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;default:now()"`
}

type Book struct {
	ID            int64     `gorm:"primaryKey"`
	TitleAr       string    `gorm:"column:title_ar;not null"`
	TitleEn       string    `gorm:"column:title_en"`
	DescriptionAr string    `gorm:"column:description_ar"`
	DescriptionEn string    `gorm:"column:description_en"`
	AuthorName    string    `gorm:"column:author_name"`
	PriceHalalas  int64     `gorm:"column:price_halalas;not null;default:0"`
	CoverImageURL *string   `gorm:"column:cover_image_url"`
	FileKey       string    `gorm:"column:file_key"`
	IsPublished   bool      `gorm:"column:is_published;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:now()"`
}

// Enrollment rows are unique per (course_id, student_id); paying twice for the
// same course updates the existing row instead of inserting a second one.
type Enrollment struct {
	ID            int64      `gorm:"primaryKey"`
	CourseID      int64      `gorm:"column:course_id;not null;uniqueIndex:idx_enrollments_course_student"`
	StudentID     int64      `gorm:"column:student_id;not null;uniqueIndex:idx_enrollments_course_student"`
	TransactionID *int64     `gorm:"column:transaction_id"`
	AmountPaid    int64      `gorm:"column:amount_paid;not null;default:0"`
	Progress      int        `gorm:"column:progress;not null;default:0"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;default:now()"`
}

type BookOwnership struct {
	ID            int64     `gorm:"primaryKey"`
	BookID        int64     `gorm:"column:book_id;not null;uniqueIndex:idx_book_ownerships_book_user"`
	UserID        int64     `gorm:"column:user_id;not null;uniqueIndex:idx_book_ownerships_book_user"`
	TransactionID *int64    `gorm:"column:transaction_id"`
	AmountPaid    int64     `gorm:"column:amount_paid;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:now()"`
}
