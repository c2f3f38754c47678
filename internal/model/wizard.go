package model

// WizardResponse represents a mounted account flow
type WizardResponse struct {
	ID          string `json:"id"`
	Step        string `json:"step"`
	AccountType string `json:"accountType,omitempty"`
	Navigate    string `json:"navigate,omitempty"` // set when the flow handed off to a protected page
}

// WizardActionRequest represents request for POST /api/wizard/{id}/actions
type WizardActionRequest struct {
	Type        string      `json:"type" enums:"select_mode,select_account_type,submit_signup,submit_login,choose_wallet,back"`
	Mode        string      `json:"mode,omitempty" enums:"create_account,sign_in"`
	AccountType string      `json:"accountType,omitempty" enums:"regular,enterprise"`
	Option      string      `json:"option,omitempty" enums:"create,import"`
	Signup      *SignupForm `json:"signup,omitempty"`
	Login       *LoginForm  `json:"login,omitempty"`
}

// SignupForm is the content of either sign-up form
type SignupForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Company         string `json:"company,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

// LoginForm is the content of the sign-in form
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidationErrorResponse is returned with 422 when a form is rejected
type ValidationErrorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Problems []string `json:"problems"`
}
