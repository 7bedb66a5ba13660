package models

import "time"

type User struct {
	BaseModel
	Username     string `json:"username" gorm:"type:varchar(100);not null"`
	Email        string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:text;not null"`

	// Pin gates hidden-content toggles when non-empty. Stored as the
	// literal 4-6 character value so it stays recoverable.
	Pin string `json:"-" gorm:"type:varchar(6)"`

	// Password-reset state, cleared once the reset completes.
	ResetCodeHash   *string    `json:"-" gorm:"type:text"`
	ResetCodeExpiry *time.Time `json:"-"`
	CodeVerified    bool       `json:"-" gorm:"not null;default:false"`

	Files   []File   `json:"-" gorm:"foreignKey:UserID"`
	Folders []Folder `json:"-" gorm:"foreignKey:UserID"`
}
