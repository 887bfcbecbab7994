package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"orientation-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepo) FindByStudentID(ctx context.Context, studentID string) (*domain.User, error) {
	return r.findOne(ctx, "student_id = ?", studentID)
}

// IdentityTaken 学号/身份证号是否已被占用；唯一索引覆盖已封禁用户，这里同样不过滤软删
func (r *UserRepo) IdentityTaken(ctx context.Context, studentID, citizenID string) (student, citizen bool, err error) {
	type row struct {
		StudentID string
		CitizenID string
	}
	var rows []row
	err = r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).
		Select("student_id, citizen_id").
		Where("student_id = ? OR citizen_id = ?", studentID, citizenID).
		Scan(&rows).Error
	if err != nil {
		return false, false, fmt.Errorf("failed to check identity: %w", err)
	}
	for _, rw := range rows {
		student = student || rw.StudentID == studentID
		citizen = citizen || rw.CitizenID == citizenID
	}
	return student, citizen, nil
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int, q string, withDeleted bool) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if withDeleted {
		tx = tx.Unscoped()
	}
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("student_id LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	var users []domain.User
	if err := tx.Offset(offset).Limit(limit).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return users, nil
}

// SetGroup groupID 为 nil 时清空成员关系
func (r *UserRepo) SetGroup(ctx context.Context, userID string, groupID *string) error {
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("group_id", groupID).Error
	if err != nil {
		return fmt.Errorf("failed to update user group: %w", err)
	}
	return nil
}

// DetachAll 删除组之前先清空所有成员的 group_id
func (r *UserRepo) DetachAll(ctx context.Context, groupID string) error {
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).
		Where("group_id = ?", groupID).
		Update("group_id", nil).Error
	if err != nil {
		return fmt.Errorf("failed to detach group members: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p domain.ProfilePatch) error {
	updates := map[string]any{}
	if p.FirstName != nil {
		updates["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		updates["last_name"] = *p.LastName
	}
	if p.Nickname != nil {
		updates["nickname"] = *p.Nickname
	}
	if p.Faculty != nil {
		updates["faculty"] = *p.Faculty
	}
	if p.Year != nil {
		updates["year"] = *p.Year
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete user: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountByGroup 每个组实际引用它的用户数（含软删用户）
func (r *UserRepo) CountByGroup(ctx context.Context) (map[string]int, error) {
	type row struct {
		GroupID string
		N       int
	}
	var rows []row
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).
		Select("group_id, COUNT(*) AS n").
		Where("group_id IS NOT NULL").
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, rw := range rows {
		out[rw.GroupID] = rw.N
	}
	return out, nil
}
