package dto

type ModerateRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type ModerateResponse struct {
	Success   bool   `json:"success"`
	Action    string `json:"action"`
	NewStatus string `json:"newStatus"`
}

type CreateSeriesRequest struct {
	Title    string `json:"title"`
	Synopsis string `json:"synopsis,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}
