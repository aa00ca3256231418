package model

// Course difficulty labels
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// Course represents a learning track. Courses are reference data seeded at
// startup; there is no update path.
type Course struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Title           string `gorm:"not null" json:"title"`
	Description     string `gorm:"type:text;not null" json:"description"`
	ImageURL        string `json:"imageUrl"`
	Difficulty      string `gorm:"not null" json:"difficulty"`
	Rating          int    `gorm:"default:0" json:"rating"` // tenths of a star, 0-50
	TotalChallenges int    `gorm:"default:0" json:"totalChallenges"`
	Category        string `json:"category"`
	Featured        bool   `gorm:"default:false;index" json:"featured"`
	IsNew           bool   `gorm:"default:false" json:"isNew"`

	// Relationships
	Challenges []Challenge `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}
