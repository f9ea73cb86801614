package entities

import "time"

// Deal is a commercial mobile/device deal scored by the deal recommender
type Deal struct {
	ID             string     `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Provider       string     `json:"provider" db:"provider"`
	TotalMonthly   float64    `json:"total_monthly" db:"total_monthly"`
	ContractMonths int        `json:"contract_months" db:"contract_months"`
	DataAllowance  string     `json:"data_allowance" db:"data_allowance"`
	DeviceName     string     `json:"device_name,omitempty" db:"device_name"`
	PromoEndDate   *time.Time `json:"promo_end_date,omitempty" db:"promo_end_date"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// DataUsageTier buckets customers by expected monthly consumption
type DataUsageTier string

const (
	UsageLight    DataUsageTier = "light"
	UsageModerate DataUsageTier = "moderate"
	UsageHeavy    DataUsageTier = "heavy"
)

// CustomerProfile captures the customer constraints used for ranking.
// Every field is optional: a nil/zero field means "no constraint", never
// "zero".
type CustomerProfile struct {
	CustomerType     CustomerType  `json:"customer_type,omitempty"`
	Budget           *float64      `json:"budget,omitempty"`
	PreferredMonths  *int          `json:"preferred_contract_months,omitempty"`
	DataUsage        DataUsageTier `json:"data_usage,omitempty"`
	DevicePreference string        `json:"device_preference,omitempty"`
	MinSpeedMbps     int           `json:"min_speed_mbps,omitempty"`
	PreferUnlimited  *bool         `json:"prefer_unlimited,omitempty"`
}

// WantsUnlimited reports the unlimited-data preference, defaulting to true
// when unset.
func (p CustomerProfile) WantsUnlimited() bool {
	if p.PreferUnlimited == nil {
		return true
	}
	return *p.PreferUnlimited
}

// DealScore is a scored deal with the factors that produced the score.
// Scores are derived per request and used only for ordering.
type DealScore struct {
	Deal    Deal     `json:"deal"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}
