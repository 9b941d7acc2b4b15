package models

import (
	"errors"
	"time"

	"github.com/Henryno111/deposit-stx/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Admin is an operator account allowed to act as the ledger owner through the
// admin API.
type Admin struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(100);unique;not null"`
	Password  string    `json:"-" gorm:"not null"` // Password won't be included in JSON responses
	Name      string    `json:"name" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HashPassword replaces the plain password with its bcrypt hash.
func (a *Admin) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.Password = string(hashedPassword)
	return nil
}

// ValidatePassword checks if the provided password matches the hashed password
func (a *Admin) ValidatePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
	return err == nil
}

// GetAdminByUsername retrieves an active admin by username
func GetAdminByUsername(username string) (*Admin, error) {
	var admin Admin
	result := database.DB.Where("username = ? AND is_active = ?", username, true).First(&admin)
	if result.Error != nil {
		return nil, result.Error
	}
	return &admin, nil
}

// GetAdminByID retrieves an admin regardless of its active flag.
func GetAdminByID(id int64) (*Admin, error) {
	var admin Admin
	if err := database.DB.First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// EnsureAdmin creates the bootstrap admin when no admin with that username
// exists yet. Existing accounts are left untouched.
func EnsureAdmin(db *gorm.DB, username, password string) (*Admin, error) {
	if username == "" || password == "" {
		return nil, errors.New("admin username and password are required")
	}
	var admin Admin
	err := db.Where("username = ?", username).First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	admin = Admin{Username: username, Password: password, Name: username, IsActive: true}
	if err := admin.HashPassword(); err != nil {
		return nil, err
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
