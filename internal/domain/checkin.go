package domain

import "time"

type CheckInStatus string

const (
	CheckInPreRegister   CheckInStatus = "PRE_REGISTER"
	CheckInEventRegister CheckInStatus = "EVENT_REGISTER"
)

type CheckIn struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	UserID    string        `gorm:"size:36;not null;uniqueIndex:idx_checkin_user_event" json:"userId"`
	Event     string        `gorm:"size:32;not null;uniqueIndex:idx_checkin_user_event" json:"event"`
	Status    CheckInStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (CheckIn) TableName() string { return "checkins" }

type WorkshopRegistration struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_ws_user_workshop;uniqueIndex:idx_ws_user_slot" json:"userId"`
	Workshop  string    `gorm:"size:64;not null;uniqueIndex:idx_ws_user_workshop" json:"workshop"`
	Slot      string    `gorm:"size:32;not null;uniqueIndex:idx_ws_user_slot" json:"slot"`
	CreatedAt time.Time `json:"createdAt"`
}

func (WorkshopRegistration) TableName() string { return "workshop_registrations" }
