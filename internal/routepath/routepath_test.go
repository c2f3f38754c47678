package routepath

import "testing"

func TestRouteConstants(t *testing.T) {
	t.Parallel()

	if Home != "/" {
		t.Fatalf("Home = %q", Home)
	}
	if SignIn != "/signin" {
		t.Fatalf("SignIn = %q", SignIn)
	}
	if Dashboard != "/dashboard" {
		t.Fatalf("Dashboard = %q", Dashboard)
	}
}
