package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Journal is a user-owned collection of ordered pages.
// UserID is set once at creation and never reassigned.
type Journal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"journalId"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Pages       []Page             `bson:"pages" json:"pages"`
}

// Page is a dated entry embedded in its parent journal's document.
// Pages have no identity outside their journal; insertion order is meaningful.
type Page struct {
	ID        primitive.ObjectID `bson:"_id" json:"pageId"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Title   string    `bson:"title" json:"title"`
	Content string    `bson:"content,omitempty" json:"content,omitempty"`
	Date    time.Time `bson:"date" json:"date"`
	Photo   *Photo    `bson:"photo,omitempty" json:"photo,omitempty"`
}

// Photo is an attachment stored inline with its page. URL is set when the
// file was also pushed to the media CDN.
type Photo struct {
	FieldName    string `bson:"field_name,omitempty" json:"fieldName,omitempty"`
	OriginalName string `bson:"original_name,omitempty" json:"originalName,omitempty"`
	MimeType     string `bson:"mime_type,omitempty" json:"mimeType,omitempty"`
	Data         []byte `bson:"data,omitempty" json:"data,omitempty"`
	URL          string `bson:"url,omitempty" json:"url,omitempty"`
}
