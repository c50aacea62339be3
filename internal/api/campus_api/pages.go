package campus_api

// PageView describes an auxiliary route that has no content yet.
type PageView struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Message string `json:"message"`
	BackURL string `json:"backUrl"`
}

var placeholderPages = map[string]string{
	"login":        "Login",
	"dashboard":    "Dashboard",
	"finance":      "Financing",
	"consultation": "Book a Consultation",
	"about":        "About Us",
	"contact":      "Contact Us",
	"customers":    "Customers",
}

func placeholderPage(slug string) (PageView, bool) {
	title, ok := placeholderPages[slug]
	if !ok {
		return PageView{}, false
	}
	return PageView{
		Slug:    slug,
		Title:   title,
		Message: "Coming soon",
		BackURL: "/",
	}, true
}
