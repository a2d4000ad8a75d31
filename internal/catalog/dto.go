package catalog

import (
	errors "github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/common/validation"
	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
)

type CourseDTO struct {
	TitleAr       string `json:"title_ar"`
	TitleEn       string `json:"title_en,omitempty"`
	DescriptionAr string `json:"description_ar,omitempty"`
	DescriptionEn string `json:"description_en,omitempty"`
	PriceHalalas  int64  `json:"price_halalas"`
	ConsultantID  *int64 `json:"consultant_id,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	IsPublished   bool   `json:"is_published"`
}

func (d *CourseDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("title_ar", d.TitleAr).Required().MaxLength(255)
	validator.Field("price_halalas", d.PriceHalalas).NonNegative(errors.ErrCodeInvalidAmount)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type BookDTO struct {
	TitleAr       string `json:"title_ar"`
	TitleEn       string `json:"title_en,omitempty"`
	DescriptionAr string `json:"description_ar,omitempty"`
	DescriptionEn string `json:"description_en,omitempty"`
	AuthorName    string `json:"author_name,omitempty"`
	PriceHalalas  int64  `json:"price_halalas"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	FileKey       string `json:"file_key,omitempty"`
	IsPublished   bool   `json:"is_published"`
}

func (d *BookDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("title_ar", d.TitleAr).Required().MaxLength(255)
	validator.Field("price_halalas", d.PriceHalalas).NonNegative(errors.ErrCodeInvalidAmount)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type CourseResponse struct {
	ID            int64  `json:"id"`
	TitleAr       string `json:"title_ar"`
	TitleEn       string `json:"title_en,omitempty"`
	DescriptionAr string `json:"description_ar,omitempty"`
	DescriptionEn string `json:"description_en,omitempty"`
	PriceHalalas  int64  `json:"price_halalas"`
	ConsultantID  *int64 `json:"consultant_id,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	EnrolledCount int64  `json:"enrolled_count"`
	IsPublished   bool   `json:"is_published"`
}

type BookResponse struct {
	ID            int64  `json:"id"`
	TitleAr       string `json:"title_ar"`
	TitleEn       string `json:"title_en,omitempty"`
	DescriptionAr string `json:"description_ar,omitempty"`
	DescriptionEn string `json:"description_en,omitempty"`
	AuthorName    string `json:"author_name,omitempty"`
	PriceHalalas  int64  `json:"price_halalas"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	IsPublished   bool   `json:"is_published"`
}

func ToCourseResponse(c *catalogdm.Course) CourseResponse {
	resp := CourseResponse{
		ID:            c.ID,
		TitleAr:       c.TitleAr,
		TitleEn:       c.TitleEn,
		DescriptionAr: c.DescriptionAr,
		DescriptionEn: c.DescriptionEn,
		PriceHalalas:  c.PriceHalalas,
		ConsultantID:  c.ConsultantID,
		EnrolledCount: c.EnrolledCount,
		IsPublished:   c.IsPublished,
	}
	if c.CoverImageURL != nil {
		resp.CoverImageURL = *c.CoverImageURL
	}
	return resp
}

func ToBookResponse(b *catalogdm.Book) BookResponse {
	resp := BookResponse{
		ID:            b.ID,
		TitleAr:       b.TitleAr,
		TitleEn:       b.TitleEn,
		DescriptionAr: b.DescriptionAr,
		DescriptionEn: b.DescriptionEn,
		AuthorName:    b.AuthorName,
		PriceHalalas:  b.PriceHalalas,
		IsPublished:   b.IsPublished,
	}
	if b.CoverImageURL != nil {
		resp.CoverImageURL = *b.CoverImageURL
	}
	return resp
}
