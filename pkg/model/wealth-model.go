package model

// WealthData model, free-text monthly wealth snapshots per account and year.
// Values stay as strings, the legacy sheets mix numbers with notes.
type WealthData struct {
	ID int64 `json:"id" gorm:"omitempty; primaryKey;"`

	AccountName string `json:"accountName" gorm:"omitempty; not null; type:varchar(100); index:idx_wd_account_year;"`
	Year        int    `json:"year" gorm:"omitempty; not null; default:2024; index:idx_wd_account_year;"`

	January   string `json:"january" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	February  string `json:"february" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	March     string `json:"march" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	April     string `json:"april" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	May       string `json:"may" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	June      string `json:"june" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	July      string `json:"july" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	August    string `json:"august" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	September string `json:"september" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	October   string `json:"october" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	November  string `json:"november" gorm:"omitempty; not null; default:''; type:varchar(50);"`
	December  string `json:"december" gorm:"omitempty; not null; default:''; type:varchar(50);"`

	Model
}
