package models

import (
	"strings"

	dErrors "registrar/pkg/domain-errors"
)

// SaveRecordRequest carries the form submission.
type SaveRecordRequest struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Gender      string `json:"gender"`
	Province    string `json:"province"`
	DateOfBirth string `json:"date_of_birth"`
}

// Normalize trims surrounding whitespace from every field.
func (r *SaveRecordRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.ID = strings.TrimSpace(r.ID)
	r.Gender = strings.TrimSpace(r.Gender)
	r.Province = strings.TrimSpace(r.Province)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
}

// Validate checks that every field is present. Values are not checked
// against the gender or province choices.
func (r *SaveRecordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == "" || r.ID == "" || r.Gender == "" || r.Province == "" || r.DateOfBirth == "" {
		return dErrors.New(dErrors.CodeValidation, "all fields are required")
	}
	return nil
}

// ToRecord converts a validated request into a Record.
func (r *SaveRecordRequest) ToRecord() *Record {
	return &Record{
		Name:        r.Name,
		ID:          r.ID,
		Gender:      Gender(r.Gender),
		Province:    Province(r.Province),
		DateOfBirth: r.DateOfBirth,
	}
}
