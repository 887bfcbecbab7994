package domain

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

type House struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	NameTh        string `gorm:"size:128;not null" json:"nameTh"`
	NameEn        string `gorm:"size:128;not null" json:"nameEn"`
	DescriptionTh string `gorm:"type:text" json:"descriptionTh"`
	DescriptionEn string `gorm:"type:text" json:"descriptionEn"`
	SizeClass     string `gorm:"size:8" json:"sizeClass"` // S/M/L/XL/XXL
	Capacity      int    `gorm:"not null" json:"capacity"`
	ChosenCount   int    `gorm:"not null" json:"chosenCount"`
}

func (House) TableName() string { return "houses" }

// RankedSlots 排名槽数量（不含 sub）
const RankedSlots = 5

// HousePreferences 五个排名槽 + 一个 sub 槽，nil 为空槽
type HousePreferences struct {
	HouseRank1   *string `json:"houseRank1"`
	HouseRank2   *string `json:"houseRank2"`
	HouseRank3   *string `json:"houseRank3"`
	HouseRank4   *string `json:"houseRank4"`
	HouseRank5   *string `json:"houseRank5"`
	HouseRankSub *string `json:"houseRankSub"`
}

// Slots 按 rank1..rank5, sub 的顺序返回
func (p HousePreferences) Slots() []*string {
	return []*string{p.HouseRank1, p.HouseRank2, p.HouseRank3, p.HouseRank4, p.HouseRank5, p.HouseRankSub}
}

// Normalize 去掉空白；空串视为 nil
func (p HousePreferences) Normalize() HousePreferences {
	clean := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		if v == "" {
			return nil
		}
		return &v
	}
	return HousePreferences{
		HouseRank1:   clean(p.HouseRank1),
		HouseRank2:   clean(p.HouseRank2),
		HouseRank3:   clean(p.HouseRank3),
		HouseRank4:   clean(p.HouseRank4),
		HouseRank5:   clean(p.HouseRank5),
		HouseRankSub: clean(p.HouseRankSub),
	}
}

// Validate 检查 ID 格式与排名槽去重；sub 槽可以与排名槽重复
func (p HousePreferences) Validate() error {
	for _, id := range p.Slots() {
		if id == nil {
			continue
		}
		if _, err := uuid.Parse(*id); err != nil {
			return ErrInvalidHouseID
		}
	}
	seen := make(map[string]struct{}, RankedSlots)
	for _, id := range p.Slots()[:RankedSlots] {
		if id == nil {
			continue
		}
		if _, dup := seen[*id]; dup {
			return ErrDuplicateRank
		}
		seen[*id] = struct{}{}
	}
	return nil
}

// HouseIDs 去重后的非空 house id，已排序
func (p HousePreferences) HouseIDs() []string {
	set := map[string]struct{}{}
	for _, id := range p.Slots() {
		if id != nil {
			set[*id] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SlotCounts 每个 house 被引用的槽数（同组多槽重复计数）
func (p HousePreferences) SlotCounts() map[string]int {
	out := map[string]int{}
	for _, id := range p.Slots() {
		if id != nil {
			out[*id]++
		}
	}
	return out
}

// ChosenCountDelta 从 old 切换到 next 时每个 house 的 chosenCount 变化量，零值不返回
func ChosenCountDelta(old, next HousePreferences) map[string]int {
	delta := map[string]int{}
	for id, n := range old.SlotCounts() {
		delta[id] -= n
	}
	for id, n := range next.SlotCounts() {
		delta[id] += n
	}
	for id, d := range delta {
		if d == 0 {
			delete(delta, id)
		}
	}
	return delta
}
