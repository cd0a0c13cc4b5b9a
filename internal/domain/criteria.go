package domain

// Operation is the listing operation being searched
type Operation string

const (
	OperationRent Operation = "alquiler"
	OperationSale Operation = "venta"
)

// PropertyKind is the canonical property type
type PropertyKind string

const (
	KindHouse     PropertyKind = "casa"
	KindApartment PropertyKind = "departamento"
	KindDuplex    PropertyKind = "duplex"
	KindLand      PropertyKind = "terreno"
	KindRetail    PropertyKind = "local"
	KindOffice    PropertyKind = "oficina"
)

// Criteria is a partial search filter. A zero-valued field means "no
// constraint"; numeric constraints use pointers so that absence is never
// conflated with zero.
type Criteria struct {
	Operation    Operation    `json:"tipo,omitempty"`
	PropertyKind PropertyKind `json:"tipoPropiedad,omitempty"`
	MinBedrooms  *int         `json:"dormitorios,omitempty"`
	MaxPriceUSD  *float64     `json:"precioMax,omitempty"`
	Neighborhood string       `json:"barrio,omitempty"`
	City         string       `json:"ciudad,omitempty"`
}

// IsEmpty reports whether no constraint at all is set
func (c Criteria) IsEmpty() bool {
	return c.Operation == "" && c.PropertyKind == "" && c.MinBedrooms == nil &&
		c.MaxPriceUSD == nil && c.Neighborhood == "" && c.City == ""
}

// IntPtr is a convenience for building criteria literals
func IntPtr(v int) *int { return &v }

// FloatPtr is a convenience for building criteria literals
func FloatPtr(v float64) *float64 { return &v }
