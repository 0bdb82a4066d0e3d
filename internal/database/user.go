package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// DefaultLevel is assigned to users created without an explicit level.
const DefaultLevel = "0"

// User represents a Discord user known to the bot.
// It maps to the `users` table. The timestamp columns use camelCase names so
// that files created by earlier versions of the bot keep working.
type User struct {
	ID        string    `gorm:"column:id;primaryKey;unique" json:"id"`
	Username  string    `gorm:"column:username;not null" json:"username"`
	Level     string    `gorm:"column:level;not null;default:'0'" json:"level"`
	CreatedAt time.Time `gorm:"column:createdAt;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt;not null" json:"updatedAt"`
}

// TableName overrides GORM's pluralized struct name.
func (User) TableName() string {
	return "users"
}

// UserRepository reads and writes rows of the users table.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get returns the user with the given ID, or nil when no such row exists.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. Level defaults to DefaultLevel if empty.
func (r *UserRepository) Create(ctx context.Context, u *User) (*User, error) {
	if u == nil {
		return nil, errors.New("user is nil")
	}
	if u.ID == "" {
		return nil, ErrEmptyID
	}
	if u.Username == "" {
		return nil, ErrEmptyUsername
	}
	if u.Level == "" {
		u.Level = DefaultLevel
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// Ensure returns the user with the given ID, creating it when missing.
// The stored username is refreshed when it differs from the given one.
func (r *UserRepository) Ensure(ctx context.Context, id, username string) (*User, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return r.Create(ctx, &User{ID: id, Username: username})
	}
	if username == "" || u.Username == username {
		return u, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.WithContext(ctx).Model(u).Update("username", username).Error; err != nil {
		return nil, err
	}
	u.Username = username
	return u, nil
}

// SetLevel updates the level of an existing user.
func (r *UserRepository) SetLevel(ctx context.Context, id, level string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("level", level)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user with the given ID. Removing a missing user is not an error.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.db.WithContext(ctx).Delete(&User{}, "id = ?", id).Error
}
