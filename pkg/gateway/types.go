package gateway

import (
	"io"
	"time"
)

// TimestampLayout is the fixed-width UTC layout used for stored timestamps.
// Lexical order of formatted values equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// DateLayout is the layout of Record.Date.
const DateLayout = "2006-01-02"

// DefaultListLimit caps list operations.
const DefaultListLimit = 100

// UnknownContentType is reported for objects stored without a content type.
const UnknownContentType = "image/unknown"

// Record is a news item held in the relational store.
type Record struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordInput is the writable part of a Record.
type RecordInput struct {
	Title   string
	Content string
}

// ImageView is the public projection of a stored image.
type ImageView struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	UploadTime  time.Time `json:"uploadTime"`
	ContentType string    `json:"contentType"`
	URL         string    `json:"url"`
}

// UploadedImage is returned after a successful upload.
type UploadedImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ImageFile is an image supplied by a client for upload or replacement.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
}
