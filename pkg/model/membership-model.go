package model

// Membership model, market membership state of an account
type Membership struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	AccountName string    `json:"accountName" gorm:"omitempty; not null; type:varchar(100); unique;"`
	Status      string    `json:"status" gorm:"omitempty; not null; default:'No'; type:varchar(10);"` // "Yes"/"No"
	EndDate     *GormTime `json:"endDate" gorm:"omitempty;"`

	Model
}
