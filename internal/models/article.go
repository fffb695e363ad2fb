package models

import "gorm.io/gorm"

// Article represents a published blog article.
// CreatedBy references the User who created it and never changes after
// creation; it is what mutation rights are checked against.
type Article struct {
	ID         string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content" gorm:"type:text" validate:"required"`
	Author     string   `json:"author" gorm:"type:varchar(100)"` // Display name, defaults to the creator's username
	Tags       []string `json:"tags" gorm:"serializer:json;type:text"`
	CreatedBy  string   `json:"createdBy" gorm:"index;type:varchar(36)"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
