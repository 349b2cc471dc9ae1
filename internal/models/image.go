package models

import "time"

type Image struct {
	ID        string
	UserID    string
	Nickname  string
	ImageURL  string
	CreatedAt time.Time
}

// ImageVersion rows are immutable once written. A fresh image always gets one
// placeholder version with VersionNumber "latest" and an empty hash.
type ImageVersion struct {
	ID            string
	ImageID       string
	Hash          string
	VersionNumber string
	CreatedAt     time.Time
}
