package models

import "github.com/google/uuid"

type Folder struct {
	BaseModel
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Name       string     `json:"name" gorm:"type:varchar(255);not null"`
	ParentID   *uuid.UUID `json:"parentId" gorm:"type:uuid;index"`
	IsHidden   bool       `json:"isHidden" gorm:"not null;default:false"`
	IsFavorite bool       `json:"isFavorite" gorm:"not null;default:false"`

	Owner    User     `json:"-" gorm:"foreignKey:UserID;references:ID"`
	Parent   *Folder  `json:"-" gorm:"foreignKey:ParentID"`
	Children []Folder `json:"-" gorm:"foreignKey:ParentID"`
	Files    []File   `json:"-" gorm:"foreignKey:FolderID"`
}
