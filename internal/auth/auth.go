package auth

// Identity is the authenticated-user view the cart core consumes. A nil
// *Identity everywhere in the module means "not authenticated".
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}
