package models

// Avatar is a selectable profile image.
type Avatar struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ImageURL string `gorm:"size:512;not null" json:"image_url"`
	Title    string `gorm:"size:100" json:"title"`
}
