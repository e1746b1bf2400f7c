package models

// RecordListResponse is returned when listing every record.
type RecordListResponse struct {
	Records []*Record `json:"records"`
	Count   int       `json:"count"`
}

// FormOptions lists the fixed choices a client offers for gender and province.
type FormOptions struct {
	Genders   []Gender   `json:"genders"`
	Provinces []Province `json:"provinces"`
}

// ReloadResponse reports how many records are held after a reload.
type ReloadResponse struct {
	Loaded int `json:"loaded"`
}

// HealthResponse reports backend reachability and the number of stored records.
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}
