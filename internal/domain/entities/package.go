package entities

import "time"

// CustomerType segments the package catalogue
type CustomerType string

const (
	CustomerConsumer   CustomerType = "consumer"
	CustomerSME        CustomerType = "sme"
	CustomerEnterprise CustomerType = "enterprise"
)

// ParseCustomerType maps a raw tag to a CustomerType; unknown tags report
// ok=false.
func ParseCustomerType(raw string) (CustomerType, bool) {
	switch CustomerType(raw) {
	case CustomerConsumer, CustomerSME, CustomerEnterprise:
		return CustomerType(raw), true
	}
	return "", false
}

// Speed is a download/upload pair in Mbps
type Speed struct {
	DownloadMbps int `json:"download_mbps" db:"download_mbps"`
	UploadMbps   int `json:"upload_mbps" db:"upload_mbps"`
}

// DataAllowance is a package's data cap. Unit is "GB", "TB" or "unlimited".
type DataAllowance struct {
	Amount float64 `json:"amount" db:"data_amount"`
	Unit   string  `json:"unit" db:"data_unit"`
}

// Unlimited reports whether the allowance is uncapped
func (d DataAllowance) Unlimited() bool {
	return d.Unit == "unlimited"
}

// Package is a commercial connectivity package from the catalogue. The
// pipeline reads and ranks packages but never mutates them.
type Package struct {
	ID           string        `json:"id" db:"id"`
	Name         string        `json:"name" db:"name"`
	CustomerType CustomerType  `json:"customer_type" db:"customer_type"`
	ServiceType  ServiceType   `json:"service_type" db:"service_type"`
	Provider     string        `json:"provider" db:"provider"`
	MonthlyPrice float64       `json:"monthly_price" db:"monthly_price"`
	SetupFee     float64       `json:"setup_fee" db:"setup_fee"`
	Currency     string        `json:"currency" db:"currency"`
	Speed        Speed         `json:"speed" db:"-"`
	Data         DataAllowance `json:"data_allowance" db:"-"`
	Description  string        `json:"description,omitempty" db:"description"`
	Features     []string      `json:"features,omitempty" db:"-"`
	IsActive     bool          `json:"is_active" db:"is_active"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// RankedPackage is a catalogue package scored against coverage at a point
// and the customer's constraints.
type RankedPackage struct {
	Package
	Available    bool           `json:"available"`
	Signal       SignalStrength `json:"signal"`
	Confidence   Confidence     `json:"confidence"`
	Score        int            `json:"score"`
	MatchReasons []string       `json:"match_reasons"`
	Pros         []string       `json:"pros"`
	Cons         []string       `json:"cons"`
}
