package backend

// Option is a selectable reference item shown as an inline button.
type Option struct {
	ID    int64
	Label string
}

// User is the backend account linked to a Telegram identifier.
type User struct {
	UserID   int64  `json:"userID"`
	RoleName string `json:"roleName"`
}

// ChatAssociation binds a group chat to a shop and its assigned contractor.
type ChatAssociation struct {
	ShopID          int64  `json:"shopID"`
	ShopName        string `json:"shopName"`
	ContractorID    int64  `json:"contractorID"`
	ContractorLogin string `json:"contractorLogin"`
}

// CreateRequestInput is the payload for creating a service request.
// CustomDays is present only when the urgency requires an explicit deadline.
type CreateRequestInput struct {
	Description          string `json:"description"`
	ShopID               int64  `json:"shopID"`
	WorkCategoryID       int64  `json:"workCategoryID"`
	UrgencyID            int64  `json:"urgencyID"`
	AssignedContractorID int64  `json:"assignedContractorID"`
	CreatedByUserID      int64  `json:"createdByUserID"`
	CustomDays           *int   `json:"customDays,omitempty"`
}

// CreateResponse carries the identifier of a newly created request.
type CreateResponse struct {
	RequestID int64 `json:"requestID"`
}

// HealthStatus classifies the outcome of a backend health probe.
type HealthStatus int

const (
	// HealthOK means the backend answered 200.
	HealthOK HealthStatus = iota
	// HealthUnauthorized means the API key was rejected (401).
	HealthUnauthorized
	// HealthForbidden means the bot role lacks access (403).
	HealthForbidden
	// HealthStatusError covers any other HTTP status.
	HealthStatusError
	// HealthUnreachable means the backend could not be contacted at all.
	HealthUnreachable
)

// HealthResult describes a health probe outcome in detail.
type HealthResult struct {
	Status HealthStatus
	// Code is the HTTP status code when a response was received.
	Code int
	// Body holds a short excerpt of the response body for diagnostics.
	Body string
	// Err is the transport error for HealthUnreachable.
	Err error
}
