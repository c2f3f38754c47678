// Package routepath holds the client-side route paths the account flows navigate to.
package routepath

const (
	// Home is the marketing landing page.
	Home = "/"
	// SignIn is the entry point of the account wizard.
	SignIn = "/signin"
	// Dashboard is the protected area behind the session gate.
	Dashboard = "/dashboard"
)
