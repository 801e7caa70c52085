package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

type User struct {
	gorm.Model
	Username     string `gorm:"column:username;unique;not null" json:"username"`
	Email        string `gorm:"column:email;unique;not null" json:"email"`
	Password     string `gorm:"-:all" json:"-"` // Temporary field for password handling
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	PhoneNumber  string `gorm:"column:phone_number" json:"phoneNumber"`
	Gender       Gender `gorm:"column:gender;not null" json:"gender"`
	StudentID    string `gorm:"column:student_id" json:"studentId"`
	PhotoURL     string `gorm:"column:photo_url" json:"photoUrl"`
	FCMToken     string `gorm:"column:fcm_token" json:"-"`
	IsVerified   bool   `gorm:"column:is_verified;default:false" json:"isVerified"`

	// Derived rating aggregate. Recomputed from the full rating set,
	// never mutated directly.
	AverageRating float64 `gorm:"column:average_rating;default:0" json:"averageRating"`
	TotalRatings  int     `gorm:"column:total_ratings;default:0" json:"totalRatings"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
