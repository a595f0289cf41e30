package model

import "time"

// ISOTimeFormat は created_at の書式 (JavaScript の toISOString と同じ形)
const ISOTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Query is a stored device query.
type Query struct {
	ID        uint   `gorm:"primary_key" json:"id"`
	Name      string `gorm:"type:text;not null" json:"name"`
	Email     string `gorm:"type:text;not null" json:"email"`
	Device    string `gorm:"type:text;not null" json:"device"`
	Message   string `gorm:"type:text;not null" json:"message"`
	CreatedAt string `gorm:"type:text;not null" json:"created_at"`
}

func (Query) TableName() string {
	return "queries"
}

// Submission is the untrusted input of a query, before validation.
type Submission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,query_email"`
	Device  string `json:"device" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// NewQuery builds a record from a validated submission. ID and CreatedAt are
// assigned by the store on insert.
func NewQuery(s Submission) *Query {
	return &Query{
		Name:    s.Name,
		Email:   s.Email,
		Device:  s.Device,
		Message: s.Message,
	}
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(ISOTimeFormat)
}
