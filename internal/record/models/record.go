package models

// Gender is one of the fixed choices offered on the record form.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Province is one of the fixed provinces offered by the form.
type Province string

const (
	ProvincePunjab            Province = "Punjab"
	ProvinceSindh             Province = "Sindh"
	ProvinceKhyberPakhtunkhwa Province = "Khyber Pakhtunkhwa"
	ProvinceBalochistan       Province = "Balochistan"
)

// DateOfBirthLayout is the layout dates of birth are written in.
const DateOfBirthLayout = "2006-01-02"

// Genders lists the selectable genders in display order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderOther}
}

// Provinces lists the selectable provinces in display order.
func Provinces() []Province {
	return []Province{ProvincePunjab, ProvinceSindh, ProvinceKhyberPakhtunkhwa, ProvinceBalochistan}
}

// Record is one saved person's form data.
//
// Invariants:
//   - ID is the key; at most one record per ID exists in a store (last write wins)
//   - every field is non-empty once the record has passed Validate
type Record struct {
	Name        string   `json:"name"`
	ID          string   `json:"id"`
	Gender      Gender   `json:"gender"`
	Province    Province `json:"province"`
	DateOfBirth string   `json:"date_of_birth"`
}

// Fields returns the record's fields in their persisted order.
func (r *Record) Fields() []string {
	return []string{r.Name, r.ID, string(r.Gender), string(r.Province), r.DateOfBirth}
}

// Clone returns a copy so callers cannot mutate stored records.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
