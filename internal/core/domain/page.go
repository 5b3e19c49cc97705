package domain

import "strings"

type Page string

const (
	PageLogin       Page = "login"
	PageRegister    Page = "register"
	PageHome        Page = "home"
	PageDashboard   Page = "dashboard"
	PageAddProduct  Page = "addproduct"
	PageSellProduct Page = "sellproduct"
)

// ParsePage accepts either a bare page name or its file name ("home.html").
// An empty name resolves to the login page.
func ParsePage(name string) Page {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ".html")
	if name == "" {
		return PageLogin
	}
	return Page(name)
}

// Public pages are reachable without a session.
func (p Page) Public() bool {
	return p == PageLogin || p == PageRegister
}
