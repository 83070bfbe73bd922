package animals

import "time"

const MaxAnimalsPerOwner = 10

const (
	maxNameLength    = 50
	maxSpeciesLength = 30
	maxBreedLength   = 50
	maxNotesLength   = 1000
)

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexUnknown:
		return true
	default:
		return false
	}
}

type Animal struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	OwnerID   string     `gorm:"not null;index"`
	Name      string     `gorm:"not null"`
	Species   string     `gorm:"not null"`
	Breed     string     `gorm:"not null"`
	Sex       Sex        `gorm:"not null"`
	BirthDate *time.Time `gorm:"type:date"`
	Notes     string     `gorm:"not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (Animal) TableName() string {
	return "animals"
}

type CreateAnimalInput struct {
	OwnerID   string
	Name      string
	Species   string
	Breed     string
	Sex       Sex
	BirthDate *time.Time
	Notes     string
}

// UpdateAnimalInput patches only the non-nil fields. ClearBirthDate wins over BirthDate.
type UpdateAnimalInput struct {
	OwnerID        string
	AnimalID       string
	Name           *string
	Species        *string
	Breed          *string
	Sex            *Sex
	BirthDate      *time.Time
	ClearBirthDate bool
	Notes          *string
}
