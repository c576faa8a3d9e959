package models

import "time"

// Container records one uploaded file. FilePath is relative to the owner's
// storage namespace. Containers are immutable once written.
type Container struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	FilePath    string    `json:"filePath"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}
