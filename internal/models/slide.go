package models

// CTA is a call-to-action link rendered on a hero slide.
type CTA struct {
	Label   string `json:"label" yaml:"label"`
	Href    string `json:"href" yaml:"href"`
	Variant string `json:"variant,omitempty" yaml:"variant"` // "primary" | "secondary"
}

// Slide is one entry in a carousel rotation. Only Image is required.
type Slide struct {
	Image      string `json:"image" yaml:"image"`
	Title      string `json:"title,omitempty" yaml:"title"`
	Subtitle   string `json:"subtitle,omitempty" yaml:"subtitle"`
	CTAs       []CTA  `json:"ctas,omitempty" yaml:"ctas"`
	ShowText   *bool  `json:"showText,omitempty" yaml:"show_text"`
	NoOverlay  bool   `json:"noOverlay,omitempty" yaml:"no_overlay"`
	BgPosition string `json:"bgPosition,omitempty" yaml:"bg_position"`
}

// TextVisible reports whether the title block is shown; it defaults to true.
func (s Slide) TextVisible() bool {
	return s.ShowText == nil || *s.ShowText
}

// DefaultHeroSlides is the homepage hero lineup.
func DefaultHeroSlides() []Slide {
	return []Slide{
		{
			Image:    "index/cars.jpg",
			Title:    "Affordable Cars for College Students",
			Subtitle: "Browse reliable used vehicles + get personalized buying advice.",
			CTAs: []CTA{
				{Label: "Browse Inventory", Href: "/inventory", Variant: "primary"},
				{Label: "Get Consultation", Href: "/consultation", Variant: "secondary"},
			},
		},
		{
			Image:    "index/rightcar.jpg",
			Title:    "Find the Right Car Fast",
			Subtitle: "Filter by budget, mileage, and your needs.",
			CTAs:     []CTA{{Label: "View Cars", Href: "/inventory", Variant: "primary"}},
		},
		{
			Image:    "index/guide.jpg",
			Title:    "Student Friendly Guidance",
			Subtitle: "We help you choose a car that fits your life and your budget.",
			CTAs:     []CTA{{Label: "Book Consultation", Href: "/consultation", Variant: "primary"}},
		},
	}
}
