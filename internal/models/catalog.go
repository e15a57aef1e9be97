package models

import (
	"time"

	"github.com/lib/pq"
)

type Category struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null;uniqueIndex;size:100"`
	Slug        string     `json:"slug" gorm:"not null;uniqueIndex;size:100"`
	Description *string    `json:"description" gorm:"type:text"`
	ParentID    *uint      `json:"parentId" gorm:"index"`
	Parent      *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL"`
	Children    []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

type ProductType string

const (
	ProductCement   ProductType = "cement"
	ProductConcrete ProductType = "concrete"
	ProductOther    ProductType = "other"
)

type Product struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"not null;size:255;index"`
	Description    string         `json:"description" gorm:"type:text"`
	Type           ProductType    `json:"type" gorm:"not null;default:cement;size:20;index"`
	Image          *string        `json:"image" gorm:"size:500"`
	Features       pq.StringArray `json:"features" gorm:"type:text[]"`
	Advantages     pq.StringArray `json:"advantages" gorm:"type:text[]"`
	Applications   pq.StringArray `json:"applications" gorm:"type:text[]"`
	TechnicalSpecs pq.StringArray `json:"technicalSpecs" gorm:"type:text[]"`
	CategoryID     *uint          `json:"categoryId" gorm:"index"`
	Category       *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}
