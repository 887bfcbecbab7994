package domain

import "time"

// MaxGroupMembers 每组人数上限（含组长）
const MaxGroupMembers = 3

type Group struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string `gorm:"size:36;not null;uniqueIndex" json:"ownerId"`
	InviteCode  string `gorm:"size:6;not null;uniqueIndex" json:"inviteCode"`
	MemberCount int    `gorm:"not null" json:"memberCount"`
	IsConfirmed bool   `gorm:"not null" json:"isConfirmed"`

	HouseRank1   *string `gorm:"column:house_rank1;size:36" json:"houseRank1"`
	HouseRank2   *string `gorm:"column:house_rank2;size:36" json:"houseRank2"`
	HouseRank3   *string `gorm:"column:house_rank3;size:36" json:"houseRank3"`
	HouseRank4   *string `gorm:"column:house_rank4;size:36" json:"houseRank4"`
	HouseRank5   *string `gorm:"column:house_rank5;size:36" json:"houseRank5"`
	HouseRankSub *string `gorm:"column:house_rank_sub;size:36" json:"houseRankSub"`

	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []User `gorm:"foreignKey:GroupID" json:"members,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Group) TableName() string { return "groups" }

func (g *Group) Preferences() HousePreferences {
	return HousePreferences{
		HouseRank1:   g.HouseRank1,
		HouseRank2:   g.HouseRank2,
		HouseRank3:   g.HouseRank3,
		HouseRank4:   g.HouseRank4,
		HouseRank5:   g.HouseRank5,
		HouseRankSub: g.HouseRankSub,
	}
}

func (g *Group) SetPreferences(p HousePreferences) {
	g.HouseRank1 = p.HouseRank1
	g.HouseRank2 = p.HouseRank2
	g.HouseRank3 = p.HouseRank3
	g.HouseRank4 = p.HouseRank4
	g.HouseRank5 = p.HouseRank5
	g.HouseRankSub = p.HouseRankSub
}

func (g *Group) IsFull() bool { return g.MemberCount >= MaxGroupMembers }
