package models

import "time"

type Notification struct {
	ID        uint   `gorm:"primarykey"`
	Title     string `gorm:"not null"`
	Message   string `gorm:"type:text;not null"`
	SenderID  uint   `gorm:"index;not null"`
	Sender    *User  `gorm:"foreignKey:SenderID"`
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotificationRecipient records delivery and read state of a notification for one user.
type NotificationRecipient struct {
	NotificationID uint          `gorm:"primaryKey"`
	Notification   *Notification `gorm:"foreignKey:NotificationID"`
	UserID         uint          `gorm:"primaryKey;index"`
	IsRead         bool          `gorm:"not null;default:false"`
	ReadAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
