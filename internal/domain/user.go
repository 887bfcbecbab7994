package domain

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleFreshman Role = "FRESHMAN"
	RoleStaff    Role = "STAFF"
)

type User struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id"`
	StudentID    string  `gorm:"uniqueIndex;size:10;not null" json:"studentId"`
	CitizenID    string  `gorm:"uniqueIndex;size:13;not null" json:"citizenId"`
	PasswordHash string  `gorm:"size:100;not null" json:"-"`
	FirstName    string  `gorm:"size:64;not null" json:"firstName"`
	LastName     string  `gorm:"size:64;not null" json:"lastName"`
	Nickname     string  `gorm:"size:32" json:"nickname"`
	Faculty      string  `gorm:"size:64" json:"faculty"`
	Year         int     `json:"year"`
	Phone        string  `gorm:"size:16" json:"phone"`
	Role         Role    `gorm:"size:16;not null" json:"role"`
	GroupID      *string `gorm:"size:36;index" json:"groupId"` // 至多属于一个组

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// ProfilePatch 仅包含允许用户自行修改的字段；nil 表示不改
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Nickname  *string
	Faculty   *string
	Year      *int
	Phone     *string
}

// Member 同组成员互相可见的资料，不含身份证号与电话
type Member struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Nickname  string `json:"nickname"`
	Faculty   string `json:"faculty"`
	Year      int    `json:"year"`
}

func (u *User) AsMember() Member {
	return Member{
		ID:        u.ID,
		StudentID: u.StudentID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Nickname:  u.Nickname,
		Faculty:   u.Faculty,
		Year:      u.Year,
	}
}
