package model

// Item model, a tradeable instrument
type Item struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	Name string `json:"name" gorm:"omitempty; not null; type:varchar(200); unique;"`

	Model
}

// Alias model, maps a short search name to an item's full name
//
// ImagePath is data only, file upload/serving stays with the web layer.
type Alias struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	FullName  string `json:"fullName" gorm:"omitempty; not null; type:varchar(200); index;"`
	ShortName string `json:"shortName" gorm:"omitempty; not null; default:''; type:varchar(100); index;"`
	ImagePath string `json:"imagePath" gorm:"omitempty; not null; default:''; type:varchar(300);"`

	Model
}
