// Package models contains the persistent domain types and the API error taxonomy.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ProfileType is the value type of a profile attribute.
type ProfileType string

const (
	ProfileTypeText   ProfileType = "text"
	ProfileTypeEmail  ProfileType = "email"
	ProfileTypeFile   ProfileType = "file"
	ProfileTypeNumber ProfileType = "number"
	ProfileTypeDate   ProfileType = "date"
	ProfileTypeURL    ProfileType = "url"
	ProfileTypeSelect ProfileType = "select"
)

// ProfileTypes lists every supported attribute type.
var ProfileTypes = []ProfileType{
	ProfileTypeText,
	ProfileTypeEmail,
	ProfileTypeFile,
	ProfileTypeNumber,
	ProfileTypeDate,
	ProfileTypeURL,
	ProfileTypeSelect,
}

// ParseProfileType normalizes s and reports whether it names a supported type.
func ParseProfileType(s string) (ProfileType, bool) {
	t := ProfileType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ProfileTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Profile is an admin-defined attribute applicable to every user.
type Profile struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Slug       string         `gorm:"size:64;not null;uniqueIndex" json:"slug"`
	Type       ProfileType    `gorm:"type:varchar(16);not null;default:'text'" json:"type"`
	IsRequired bool           `gorm:"not null;default:false" json:"is_required"`
	IsUnique   bool           `gorm:"not null;default:false" json:"is_unique"`
	Min        *float64       `json:"min"`
	Max        *float64       `json:"max"`
	Options    []SelectOption `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// MinBound returns the lower bound of the profile. An unset or zero min
// applies no bound.
func (p Profile) MinBound() (float64, bool) { return bound(p.Min) }

// MaxBound returns the upper bound of the profile. An unset or zero max
// applies no bound.
func (p Profile) MaxBound() (float64, bool) { return bound(p.Max) }

func bound(v *float64) (float64, bool) {
	if v == nil || *v == 0 {
		return 0, false
	}
	return *v, true
}

// OptionKeys returns the legal values of a select profile.
func (p Profile) OptionKeys() []string {
	keys := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		keys = append(keys, o.Key)
	}
	return keys
}

// SelectOption is one legal value of a select profile.
type SelectOption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uint      `gorm:"not null;uniqueIndex:idx_select_option_key" json:"profile_id"`
	Key       string    `gorm:"size:191;not null;uniqueIndex:idx_select_option_key" json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (SelectOption) TableName() string {
	return "select_options"
}

// ProfileValue is the stored value of one profile for one user.
//
// UniqueValue holds the digest of Value only when the owning profile is
// unique; the composite index on (profile_id, unique_value) turns a lost
// check-then-write race into a constraint violation. The digest keeps the
// indexed column fixed-width whatever the length of Value.
type ProfileValue struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_profile" json:"user_id"`
	ProfileID   uint      `gorm:"not null;uniqueIndex:idx_user_profile;uniqueIndex:idx_profile_unique_value" json:"profile_id"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	UniqueValue *string   `gorm:"size:64;uniqueIndex:idx_profile_unique_value" json:"-"`
	Profile     *Profile  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (ProfileValue) TableName() string {
	return "user_profiles"
}

// SetValue assigns v and keeps UniqueValue in step with the profile's uniqueness flag.
func (pv *ProfileValue) SetValue(v string, unique bool) {
	pv.Value = v
	if unique {
		u := UniqueDigest(v)
		pv.UniqueValue = &u
		return
	}
	pv.UniqueValue = nil
}

// UniqueDigest is the hex sha256 of v as stored in unique_value.
func UniqueDigest(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
