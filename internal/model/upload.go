package model

import "time"

// Upload represents a stored file and its metadata.
type Upload struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	Digest       string    `json:"digest"`
	CreatedAt    time.Time `json:"created_at"`
}

// UploadListResponse represents the recent uploads returned by the API.
type UploadListResponse struct {
	Uploads []Upload `json:"uploads"`
}
