package domain

import "errors"

// 上傳與查詢的錯誤分類
var (
	ErrMissingFile        = errors.New("No file provided")
	ErrTitleRequired      = errors.New("Title is required")
	ErrTitleTooLong       = errors.New("Title must be at most 100 characters")
	ErrDescriptionTooLong = errors.New("Description must be at most 500 characters")
	ErrFileTooLarge       = errors.New("File size too large")
	ErrUnsupportedType    = errors.New("Unsupported file type")

	ErrUploadFailed  = errors.New("Upload failed")
	ErrPersistence   = errors.New("Failed to save video")
	ErrVideoNotFound = errors.New("Video not found")
	ErrListFailed    = errors.New("Failed to fetch videos")
)

var publicErrors = []error{
	ErrMissingFile, ErrTitleRequired, ErrTitleTooLong, ErrDescriptionTooLong,
	ErrFileTooLarge, ErrUnsupportedType, ErrUploadFailed, ErrPersistence,
	ErrVideoNotFound, ErrListFailed,
}

// PublicMessage 給使用者看的訊息，內部細節不外露
func PublicMessage(err error) string {
	for _, e := range publicErrors {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return "Something went wrong"
}
