package model

import (
	"time"
)

// File is an uploaded attachment. Ownership lives in join tables such as
// objective_files rather than on the file row.
type File struct {
	ID           string    `db:"id" json:"id"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	Size         int64     `db:"size" json:"size"`
	StoragePath  string    `db:"storage_path" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type ObjectiveFile struct {
	ID          int64     `db:"id" json:"id"`
	ObjectiveID int64     `db:"objective_id" json:"objectiveId"`
	FileID      string    `db:"file_id" json:"fileId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
