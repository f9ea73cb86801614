package entities

// GeographicBounds is a latitude/longitude bounding box
type GeographicBounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Contains reports whether the point falls inside the bounds
func (b GeographicBounds) Contains(c Coordinates) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}

// City is a major city centroid used for confidence scoring
type City struct {
	Name     string
	Location Coordinates
}

// Province is a South African province with its approximate bounds and
// major cities.
type Province struct {
	Code   string
	Name   string
	Bounds GeographicBounds
	Cities []City
}

// SouthAfricaBounds is the approximate national bounding box. Points
// outside it are a data quality signal, not a hard rejection.
var SouthAfricaBounds = GeographicBounds{North: -22.0, South: -35.0, East: 33.0, West: 16.0}

// Country is a named bounding box for the countries bordering South Africa
type Country struct {
	Name   string
	Bounds GeographicBounds
}

// NeighboringCountries names the bordering countries so out-of-bounds
// warnings can say where a point actually is.
var NeighboringCountries = []Country{
	{Name: "Namibia", Bounds: GeographicBounds{North: -17.0, South: -29.0, East: 25.0, West: 11.5}},
	{Name: "Botswana", Bounds: GeographicBounds{North: -17.8, South: -27.0, East: 29.5, West: 20.0}},
	{Name: "Zimbabwe", Bounds: GeographicBounds{North: -15.6, South: -22.4, East: 33.1, West: 25.2}},
	{Name: "Mozambique", Bounds: GeographicBounds{North: -10.5, South: -27.0, East: 41.0, West: 30.2}},
	{Name: "Eswatini (Swaziland)", Bounds: GeographicBounds{North: -25.7, South: -27.3, East: 32.1, West: 30.8}},
	{Name: "Lesotho", Bounds: GeographicBounds{North: -28.6, South: -30.7, East: 29.5, West: 27.0}},
}

// AreaType is the estimated population density band around a point
type AreaType string

const (
	AreaUrban    AreaType = "urban"
	AreaSuburban AreaType = "suburban"
	AreaRural    AreaType = "rural"
)

// SouthAfricanProvinces lists the nine provinces in a fixed order so that
// province lookup is deterministic where approximate bounds overlap.
var SouthAfricanProvinces = []Province{
	{
		Code:   "GP",
		Name:   "Gauteng",
		Bounds: GeographicBounds{North: -25.0, South: -27.0, East: 29.0, West: 27.0},
		Cities: []City{
			{Name: "Johannesburg", Location: Coordinates{Lat: -26.2041, Lng: 28.0473}},
			{Name: "Pretoria", Location: Coordinates{Lat: -25.7479, Lng: 28.2293}},
			{Name: "Soweto", Location: Coordinates{Lat: -26.2678, Lng: 27.8585}},
			{Name: "Sandton", Location: Coordinates{Lat: -26.1076, Lng: 28.0567}},
		},
	},
	{
		Code:   "WC",
		Name:   "Western Cape",
		Bounds: GeographicBounds{North: -30.0, South: -35.0, East: 25.0, West: 16.0},
		Cities: []City{
			{Name: "Cape Town", Location: Coordinates{Lat: -33.9249, Lng: 18.4241}},
			{Name: "Stellenbosch", Location: Coordinates{Lat: -33.9321, Lng: 18.8602}},
			{Name: "George", Location: Coordinates{Lat: -33.9628, Lng: 22.4619}},
		},
	},
	{
		Code:   "KZN",
		Name:   "KwaZulu-Natal",
		Bounds: GeographicBounds{North: -26.5, South: -31.5, East: 33.0, West: 28.5},
		Cities: []City{
			{Name: "Durban", Location: Coordinates{Lat: -29.8587, Lng: 31.0218}},
			{Name: "Pietermaritzburg", Location: Coordinates{Lat: -29.6107, Lng: 30.3951}},
			{Name: "Richards Bay", Location: Coordinates{Lat: -28.7833, Lng: 32.0833}},
		},
	},
	{
		Code:   "EC",
		Name:   "Eastern Cape",
		Bounds: GeographicBounds{North: -30.0, South: -34.5, East: 30.0, West: 22.0},
		Cities: []City{
			{Name: "Gqeberha", Location: Coordinates{Lat: -33.9580, Lng: 25.6200}},
			{Name: "East London", Location: Coordinates{Lat: -32.9833, Lng: 27.8667}},
			{Name: "Mthatha", Location: Coordinates{Lat: -31.5937, Lng: 28.7831}},
		},
	},
	{
		Code:   "FS",
		Name:   "Free State",
		Bounds: GeographicBounds{North: -26.0, South: -31.0, East: 30.0, West: 24.0},
		Cities: []City{
			{Name: "Bloemfontein", Location: Coordinates{Lat: -29.0852, Lng: 26.1596}},
			{Name: "Welkom", Location: Coordinates{Lat: -27.9772, Lng: 26.7397}},
		},
	},
	{
		Code:   "MP",
		Name:   "Mpumalanga",
		Bounds: GeographicBounds{North: -22.0, South: -27.5, East: 32.0, West: 28.0},
		Cities: []City{
			{Name: "Mbombela", Location: Coordinates{Lat: -25.4743, Lng: 30.9794}},
			{Name: "Emalahleni", Location: Coordinates{Lat: -25.8669, Lng: 29.2353}},
			{Name: "Secunda", Location: Coordinates{Lat: -26.5504, Lng: 29.1781}},
		},
	},
	{
		Code:   "LP",
		Name:   "Limpopo",
		Bounds: GeographicBounds{North: -22.0, South: -25.5, East: 31.5, West: 26.0},
		Cities: []City{
			{Name: "Polokwane", Location: Coordinates{Lat: -23.9045, Lng: 29.4689}},
			{Name: "Thohoyandou", Location: Coordinates{Lat: -22.9458, Lng: 30.4839}},
		},
	},
	{
		Code:   "NW",
		Name:   "North West",
		Bounds: GeographicBounds{North: -24.0, South: -28.0, East: 28.5, West: 22.0},
		Cities: []City{
			{Name: "Rustenburg", Location: Coordinates{Lat: -25.6672, Lng: 27.2424}},
			{Name: "Klerksdorp", Location: Coordinates{Lat: -26.8500, Lng: 26.6667}},
			{Name: "Mahikeng", Location: Coordinates{Lat: -25.8601, Lng: 25.6358}},
		},
	},
	{
		Code:   "NC",
		Name:   "Northern Cape",
		Bounds: GeographicBounds{North: -24.0, South: -32.0, East: 25.0, West: 16.0},
		Cities: []City{
			{Name: "Kimberley", Location: Coordinates{Lat: -28.7282, Lng: 24.7499}},
			{Name: "Upington", Location: Coordinates{Lat: -28.4479, Lng: 21.2561}},
		},
	},
}

// NearestCityMatch is the closest known city to a point
type NearestCityMatch struct {
	Name       string      `json:"name"`
	DistanceKm float64     `json:"distance_km"`
	Location   Coordinates `json:"location"`
}

// GeoValidationResult is the outcome of coordinate validation. Validation
// never fails hard: malformed input yields IsValid=false with warnings, and
// out-of-country input yields low confidence.
type GeoValidationResult struct {
	IsValid            bool              `json:"is_valid"`
	Confidence         Confidence        `json:"confidence"`
	Province           string            `json:"province,omitempty"`
	NearestCity        *NearestCityMatch `json:"nearest_city,omitempty"`
	AreaType           AreaType          `json:"area_type,omitempty"`
	CoverageLikelihood Confidence        `json:"coverage_likelihood,omitempty"`
	Warnings           []string          `json:"warnings"`
	Suggestions        []string          `json:"suggestions,omitempty"`
}
