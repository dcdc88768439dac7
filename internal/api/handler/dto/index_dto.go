package dto

type IndexResponse struct {
	Name    string `json:"name" example:"Customer REST API Service"`
	Version string `json:"version" example:"1.0"`
	URL     string `json:"url" example:"http://localhost:8080/customers"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
