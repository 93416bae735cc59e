package models

import (
	"time"
)

type MembershipType string

const (
	MembershipBasic   MembershipType = "Basic"
	MembershipPremium MembershipType = "Premium"
	MembershipElite   MembershipType = "Elite"
)

func (t MembershipType) Valid() bool {
	switch t {
	case MembershipBasic, MembershipPremium, MembershipElite:
		return true
	}
	return false
}

type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "Active"
	MembershipInactive MembershipStatus = "Inactive"
	MembershipExpired  MembershipStatus = "Expired"
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipActive, MembershipInactive, MembershipExpired:
		return true
	}
	return false
}

// User emails are stored lower-cased; the unique index therefore enforces
// case-insensitive uniqueness.
type User struct {
	ID                       string           `gorm:"primaryKey;size:36"       json:"id"`
	Email                    string           `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash             string           `gorm:"not null"                 json:"-"`
	Name                     string           `                                json:"name,omitempty"`
	MembershipType           MembershipType   `gorm:"size:16;not null"         json:"membershipType"`
	MembershipStatus         MembershipStatus `gorm:"size:16;not null"         json:"membershipStatus"`
	CreatedAt                time.Time        `                                json:"createdAt"`
	UpcomingClasses          int              `gorm:"not null"                 json:"upcomingClasses"`
	PersonalTrainingSessions int              `gorm:"not null"                 json:"personalTrainingSessions"`
}

type ContentRecord struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Type string `gorm:"size:64;not null;index"   json:"type"`
	// SingletonKey equals Type for singleton records and is NULL for
	// collection items; the unique index allows one row per singleton type.
	SingletonKey *string   `gorm:"size:64;uniqueIndex" json:"-"`
	Data         JSON      `gorm:"not null"            json:"data"`
	CreatedAt    time.Time `gorm:"index"               json:"createdAt"`
}

func (ContentRecord) TableName() string { return "content" }

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:200;not null"        json:"name"`
	Email     string    `gorm:"size:320;not null"        json:"email"`
	Subject   string    `gorm:"size:300;not null"        json:"subject"`
	Message   string    `gorm:"type:text;not null"       json:"message"`
	CreatedAt time.Time `gorm:"index"                    json:"createdAt"`
}
