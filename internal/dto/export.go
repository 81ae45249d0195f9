package dto

import "time"

// ExportRequest asks for a rendered grid view.
type ExportRequest struct {
	View   string `form:"view" json:"view" validate:"omitempty,oneof=master group day facility"`
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportJobResponse returns the enqueued job and, once rendered, a signed
// download URL.
type ExportJobResponse struct {
	JobID       string     `json:"jobId"`
	Status      string     `json:"status"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}
