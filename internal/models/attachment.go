package models

import "time"

type Attachment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	TaskID       uint64    `gorm:"not null;index" json:"task_id"`
	UploadedByID uint64    `gorm:"not null" json:"uploaded_by_id"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath     string    `gorm:"type:varchar(255);not null" json:"file_path"`
	ContentType  string    `gorm:"type:varchar(100)" json:"content_type"`
	UploadedAt   time.Time `json:"uploaded_at"`

	// Relations
	Task       Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	UploadedBy User `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}
