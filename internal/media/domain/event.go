package domain

import "time"

// EventVideoUploaded queue / topic name
const EventVideoUploaded = "video.uploaded"

// VideoUploadedEvent 上傳完成後發佈
type VideoUploadedEvent struct {
	EventID        string    `json:"event_id"`
	VideoID        string    `json:"video_id"`
	PublicID       string    `json:"public_id"`
	Title          string    `json:"title"`
	OriginalSize   int64     `json:"original_size"`
	CompressedSize int64     `json:"compressed_size"`
	Duration       float64   `json:"duration"`
	CreatedAt      time.Time `json:"created_at"`
}
