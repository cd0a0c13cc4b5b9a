package domain

// Contact identifies who to reach about a property
type Contact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
}

// Property is a real-estate listing. Prices are stored in USD; the
// formatter converts to guaraníes for display only. Listings are
// read-only from the bot's point of view.
type Property struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	PriceUSD     float64      `json:"price"`
	Operation    Operation    `json:"type"`
	PropertyKind PropertyKind `json:"propertyType"`
	Neighborhood string       `json:"neighborhood"`
	City         string       `json:"city"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	AreaM2       int          `json:"area"`
	Amenities    []string     `json:"amenities"`
	Contact      Contact      `json:"contact"`
}
