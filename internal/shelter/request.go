package shelter

type CreateShelterRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
	Active   *bool  `json:"active,omitempty"`
}

type CheckInRequest struct {
	Code string `json:"code" binding:"required"`
}
