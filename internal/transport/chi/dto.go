package chi

// ErrorCode is a machine-readable error class in API responses.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest            ErrorCode = "bad_request"
	ErrorCodeUnauthorized          ErrorCode = "unauthorized"
	ErrorCodeDatasetNotFound       ErrorCode = "dataset_not_found"
	ErrorCodePreconditionViolation ErrorCode = "precondition_violation"
	ErrorCodeDimensionMismatch     ErrorCode = "dimension_mismatch"
	ErrorCodeInvalidDataset        ErrorCode = "invalid_dataset"
	ErrorCodeRateLimited           ErrorCode = "rate_limited"
	ErrorCodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Invariant string    `json:"invariant,omitempty"`
}

// ClassifyRequest is the body of POST /datasets/{dataset}/classify.
// K is optional; 0 selects the server default.
type ClassifyRequest struct {
	K     int       `json:"k"`
	Query []float64 `json:"query"`
}

// VoteResponse is the vote share of one class.
type VoteResponse struct {
	Label    string  `json:"label"`
	Fraction float64 `json:"fraction"`
}

// NeighborResponse is one voting training object.
type NeighborResponse struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	Distance float64 `json:"distance"`
}

// ClassifyResponse is the result of a classification.
type ClassifyResponse struct {
	Dataset   string             `json:"dataset"`
	K         int                `json:"k"`
	Votes     []VoteResponse     `json:"votes"`
	Predicted string             `json:"predicted"`
	Neighbors []NeighborResponse `json:"neighbors"`
	Cached    bool               `json:"cached"`
}

// DatasetResponse summarizes a dataset.
type DatasetResponse struct {
	Name        string   `json:"name"`
	Classes     []string `json:"classes"`
	ClassCounts []int    `json:"class_counts"`
	Size        int      `json:"size"`
	Dim         int      `json:"dim"`
}

// DatasetListResponse lists all datasets sorted by name.
type DatasetListResponse struct {
	Items []DatasetResponse `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
