package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypeImage  FileType = "image"
	FileTypePDF    FileType = "pdf"
	FileTypeNote   FileType = "note"
	FileTypeFolder FileType = "folder"
)

// FileTypes is the closed tag set, in the order dashboards report it.
var FileTypes = []FileType{FileTypeImage, FileTypePDF, FileTypeNote, FileTypeFolder}

func (t FileType) Valid() bool {
	for _, known := range FileTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TagList persists a set of string tags as a JSON text column.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	encoded, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = TagList{}
		return nil
	}
	switch raw := value.(type) {
	case string:
		return json.Unmarshal([]byte(raw), t)
	case []byte:
		return json.Unmarshal(raw, t)
	default:
		return fmt.Errorf("unsupported tag list column type %T", value)
	}
}

type File struct {
	BaseModel
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Name       string     `json:"name" gorm:"type:varchar(255);not null"`
	Type       FileType   `json:"type" gorm:"type:varchar(20);not null;index"`
	Size       int64      `json:"size" gorm:"not null;default:0"`
	MimeType   string     `json:"mimetype" gorm:"type:varchar(255);not null"`
	UploadDate time.Time  `json:"uploadDate" gorm:"not null;index"`
	FolderID   *uuid.UUID `json:"folderId" gorm:"type:uuid;index"`
	IsHidden   bool       `json:"isHidden" gorm:"not null;default:false"`
	IsFavorite bool       `json:"isFavorite" gorm:"not null;default:false"`
	Tags       TagList    `json:"tags" gorm:"type:text"`

	// StoragePath is the opaque handle to the externally stored bytes.
	StoragePath string `json:"path" gorm:"type:text;not null"`

	Owner  User    `json:"-" gorm:"foreignKey:UserID;references:ID"`
	Folder *Folder `json:"-" gorm:"foreignKey:FolderID"`
}
