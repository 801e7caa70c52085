package models

import "gorm.io/gorm"

type Vehicle struct {
	gorm.Model
	OwnerID     uint   `json:"ownerId" gorm:"not null;index"`
	Owner       User   `json:"-"`
	Name        string `json:"name" gorm:"not null"`
	CarModel    string `json:"model" gorm:"column:car_model;not null"`
	Color       string `json:"color" gorm:"not null"`
	PlateNumber string `json:"plateNumber" gorm:"not null"`
	Capacity    int    `json:"capacity" gorm:"not null"`
	PhotoURL    string `json:"photoUrl"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
