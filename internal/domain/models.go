// Package domain defines the persistence models for accounts and search
// history. These types are mapped with GORM and form the core data layer
// of the music recognition service.
package domain

import "time"

// Account represents a registered user. The password is stored only as a
// bcrypt hash and is never serialized into API responses.
//
// Fields:
//   - ID: autoincrement primary key.
//   - Name: display name shown by the client.
//   - Email: login identifier; uniqueness is enforced by the database
//     (unique index), not by a prior existence check.
//   - PasswordHash: salted one-way hash of the password.
//   - CreatedAt: timestamp managed by GORM.
type Account struct {
	ID           uint      `json:"id"    gorm:"primaryKey"`
	Name         string    `json:"name"  gorm:"type:varchar(50);not null"`
	Email        string    `json:"email" gorm:"type:varchar(120);not null;uniqueIndex:ux_accounts_email"`
	PasswordHash string    `json:"-"     gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }

// History represents one past successful recognition owned by an account.
// Rows are immutable after creation and are removed permanently on delete
// (no soft deletion).
//
// Fields:
//   - ID: autoincrement primary key.
//   - Title: composite "artist - title" string of the recognized song.
//   - Lyrics: lyrics text, or the "Paroles non disponibles" sentinel.
//   - UserID: owning account (indexed, required).
//   - CreatedAt: search timestamp, assigned at write time.
type History struct {
	ID        uint      `json:"id"      gorm:"primaryKey"`
	Title     string    `json:"title"   gorm:"type:varchar(200);not null"`
	Lyrics    string    `json:"paroles" gorm:"type:text"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_user_histories"`
	CreatedAt time.Time `json:"date"`

	// Account is the owning user. History rows are cascade-deleted if the
	// account is removed at the database level.
	Account Account `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for History.
func (History) TableName() string { return "histories" }
