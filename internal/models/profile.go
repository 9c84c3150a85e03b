package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Social holds a profile's optional social network links.
type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

// Experience is a job entry embedded in a Profile.
type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

func (e Experience) EntryID() string { return e.ID }

// Education is a schooling entry embedded in a Profile.
type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

func (e Education) EntryID() string { return e.ID }

// Profile is the public developer profile owned by exactly one User.
// Experience and Education are ordered newest-first.
type Profile struct {
	ID             string                          `gorm:"primaryKey;size:36" json:"id"`
	UserID         string                          `gorm:"size:36;not null;uniqueIndex" json:"-"`
	User           *User                           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Handle         string                          `gorm:"size:40;not null;uniqueIndex" json:"handle"`
	Company        string                          `json:"company,omitempty"`
	Website        string                          `json:"website,omitempty"`
	Location       string                          `json:"location,omitempty"`
	Bio            string                          `json:"bio,omitempty"`
	Status         string                          `gorm:"not null" json:"status"`
	GithubUsername string                          `json:"githubusername,omitempty"`
	Skills         datatypes.JSONSlice[string]     `json:"skills"`
	Social         Social                          `gorm:"embedded;embeddedPrefix:social_" json:"social"`
	Experience     datatypes.JSONSlice[Experience] `json:"experience"`
	Education      datatypes.JSONSlice[Education]  `json:"education"`
	Date           time.Time                       `gorm:"autoCreateTime" json:"date"`
}

func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Profile) BeforeSave(_ *gorm.DB) error {
	p.normalize()
	return nil
}

func (p *Profile) AfterFind(_ *gorm.DB) error {
	p.normalize()
	return nil
}

func (p *Profile) normalize() {
	p.Skills = nonNil(p.Skills)
	p.Experience = nonNil(p.Experience)
	p.Education = nonNil(p.Education)
}
