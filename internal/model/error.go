package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeBadRequest     = "bad_request"
	CodeValidation     = "validation_failed"
	CodeInvalidStep    = "invalid_transition"
	CodeNotFound       = "not_found"
	CodeProviderAbsent = "provider_absent"
	CodeUserRejected   = "user_rejected"
	CodeNoSession      = "no_session"
	CodeWalletFailed   = "wallet_failed"
	CodeStoreFailure   = "store_failure"
	CodeInternal       = "internal"
)
