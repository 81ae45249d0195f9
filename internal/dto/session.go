package dto

// CreateSessionRequest opens a new camp session in draft.
type CreateSessionRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Name           string `json:"name" validate:"required,min=2,max=120"`
	StartDate      string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"endDate" validate:"required,datetime=2006-01-02"`
	MaxCampers     int    `json:"maxCampers" validate:"omitempty,min=1"`
}

// UpdateSessionRequest edits session header fields.
type UpdateSessionRequest struct {
	Name           string `json:"name" validate:"omitempty,min=2,max=120"`
	StartDate      string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	MaxCampers     int    `json:"maxCampers" validate:"omitempty,min=1"`
	CurrentCampers int    `json:"currentCampers" validate:"omitempty,min=0"`
}

// UpdateSessionStatusRequest moves the session lifecycle forward or cancels.
type UpdateSessionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft planning active completed cancelled"`
}

// SessionListQuery narrows session listings.
type SessionListQuery struct {
	OrganizationID string `form:"organizationId"`
	Status         string `form:"status" validate:"omitempty,oneof=draft planning active completed cancelled"`
	Page           int    `form:"page" validate:"omitempty,min=1"`
	PageSize       int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// CreateGroupRequest adds a camper group to a session.
type CreateGroupRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Color        string `json:"color" validate:"omitempty,max=32"`
	Capacity     int    `json:"capacity" validate:"omitempty,min=1"`
	CurrentCount int    `json:"currentCount" validate:"omitempty,min=0"`
	AgeMin       int    `json:"ageMin" validate:"required,min=1,max=25"`
	AgeMax       int    `json:"ageMax" validate:"required,min=1,max=25,gtefield=AgeMin"`
	Gender       string `json:"gender" validate:"omitempty,oneof=male female mixed"`
	SortOrder    int    `json:"sortOrder" validate:"omitempty,min=0"`
}

// UpdateGroupRequest edits a group.
type UpdateGroupRequest struct {
	Name         string `json:"name" validate:"omitempty,min=1,max=120"`
	Color        string `json:"color" validate:"omitempty,max=32"`
	Capacity     int    `json:"capacity" validate:"omitempty,min=1"`
	CurrentCount int    `json:"currentCount" validate:"omitempty,min=0"`
	AgeMin       int    `json:"ageMin" validate:"omitempty,min=1,max=25"`
	AgeMax       int    `json:"ageMax" validate:"omitempty,min=1,max=25"`
	Gender       string `json:"gender" validate:"omitempty,oneof=male female mixed"`
	SortOrder    int    `json:"sortOrder" validate:"omitempty,min=0"`
}
