package models

// FileInfo describes an uploaded file stored on disk
type FileInfo struct {
	Filename     string `json:"filename" bson:"filename" gorm:"size:255;default:''"`         // Generated name on disk
	OriginalName string `json:"originalName" bson:"originalName" gorm:"size:255;default:''"` // Name sent by the client
	MimeType     string `json:"mimetype" bson:"mimetype" gorm:"size:100;default:''"`
	Size         int64  `json:"size" bson:"size" gorm:"default:0"`
	Path         string `json:"path" bson:"path" gorm:"size:512;default:''"`
}

// Attached reports whether the struct points at a stored file.
func (f FileInfo) Attached() bool {
	return f.Path != ""
}
