package models

// TopBook is one row of the most-downloaded-books report. Percentage is
// the book's share of the combined downloads of the reported rows,
// formatted with two decimals.
type TopBook struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Downloads  int64  `json:"downloads"`
	Percentage string `json:"percentage"`
}

// LanguageCount is one row of the languages-distribution report.
type LanguageCount struct {
	Language string `json:"language" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}

// MonthlySignup is one row of the monthly-signups report. Month is
// formatted as "2006-01".
type MonthlySignup struct {
	Month string `json:"month" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}
