package models

import "time"

type ProductCategory string

const (
	CategoryMen   ProductCategory = "Men"
	CategoryWomen ProductCategory = "Women"
	CategoryKids  ProductCategory = "Kids"
)

type Product struct {
	ID          string          `gorm:"primaryKey" json:"id"` // immutable once created
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       float64         `gorm:"not null" json:"price"`
	Category    ProductCategory `gorm:"type:VARCHAR(10)" json:"category"`
	SubCategory string          `json:"subCategory"`
	Sizes       []string        `gorm:"serializer:json" json:"sizes"`
	Images      []string        `gorm:"serializer:json" json:"image"` // up to 4 hosted image URLs
	Bestseller  bool            `json:"bestseller"`
	Sale        bool            `gorm:"default:false" json:"sale"`
	CreatedAt   time.Time       `json:"date"`
}

// FirstImage returns the lead image URL, or "" for a product without images.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
