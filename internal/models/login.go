package models

// LoginBody represents the JSON body for token issuance
// swagger:model LoginBody
type LoginBody struct {
	// Username
	// required: true
	// example: admin
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successfully issued token
// swagger:model LoginResponse
type LoginResponse struct {
	// Signed bearer token
	// required: true
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`
}

// MeResponse describes the subject of a bearer token
// swagger:model MeResponse
type MeResponse struct {
	// Username
	// example: admin
	Username string `json:"username"`

	// Role
	// example: ADMIN
	Role Role `json:"role"`
}
