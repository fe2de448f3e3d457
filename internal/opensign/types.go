package opensign

// Role describes one position in the ordered signer sequence. The provider's
// signing order is positional, so roles are always carried as a slice, never a
// keyed structure.
type Role struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Widget places a signature field on a document page.
type Widget struct {
	Type string  `json:"type"`
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w,omitempty"`
	H    float64 `json:"h,omitempty"`
}

// TemplateRequest is the body of the create-template call. File carries the
// base64-encoded PDF. SendInOrder must be true for sequential signing.
type TemplateRequest struct {
	File        string   `json:"file"`
	Title       string   `json:"title"`
	SendInOrder bool     `json:"sendInOrder"`
	Roles       []Role   `json:"roles"`
	Widgets     []Widget `json:"widgets"`
}

// TemplateResponse is the provider's create-template response. A response is
// only considered successful when ObjectID is present.
type TemplateResponse struct {
	ObjectID string `json:"objectId"`
}
