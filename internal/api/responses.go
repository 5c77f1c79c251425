package api

type ErrorResponse struct {
	Error string `json:"error" example:"slot is not available"`
}

type MessageResponse struct {
	Message string `json:"message" example:"booking canceled"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
