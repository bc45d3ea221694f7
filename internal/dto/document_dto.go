package dto

type UploadDocumentsResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

type ListDocumentsResponse struct {
	Status       string   `json:"status"`
	Documents    []string `json:"documents"`
	HasDocuments bool     `json:"has_documents"`
}
