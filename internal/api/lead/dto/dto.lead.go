package dto

// LeadCaptureInput là payload quick capture từ landing page.
// Các trường legacy (type, consentMarketing, website) vẫn được chấp nhận
// song song với trường mới (role, consent, honeypot).
type LeadCaptureInput struct {
	Role      string `json:"role,omitempty"`      // host, renter, both
	Type      string `json:"type,omitempty"`      // Legacy, tương đương role
	FirstName string `json:"firstName"`           // Bắt buộc
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"` // Bắt buộc
	Phone     string `json:"phone,omitempty"`
	CityOrZip string `json:"cityOrZip,omitempty"` // "68508" | "Lincoln, NE" | freeform
	CitySlug  string `json:"citySlug,omitempty"`  // Legacy

	Consent          *bool `json:"consent,omitempty"`          // Phải là true
	ConsentMarketing *bool `json:"consentMarketing,omitempty"` // Legacy fallback của consent

	CaptchaToken string `json:"captchaToken"` // Bắt buộc, opaque
	Honeypot     string `json:"honeypot,omitempty"`
	Website      string `json:"website,omitempty"` // Legacy honeypot

	// Telemetry từ body (fallback lấy từ Referer header)
	Referrer    string `json:"referrer,omitempty"`
	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
	UTMTerm     string `json:"utmTerm,omitempty"`
	UTMContent  string `json:"utmContent,omitempty"`
}

// HostLocationInput là một địa điểm host gửi lên
type HostLocationInput struct {
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Zip5  string `json:"zip5,omitempty"`
}

// HostVehicleInput là một xe host gửi lên khi enrichment
type HostVehicleInput struct {
	Year         string `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Trim         string `json:"trim,omitempty"`
	BodyType     string `json:"bodyType,omitempty"`
	Seats        *int   `json:"seats,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	MileageBand  string `json:"mileageBand,omitempty"`
	Availability string `json:"availability,omitempty"`
	Readiness    string `json:"readiness,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// HostDetailsInput là khối enrichment của vai trò host
type HostDetailsInput struct {
	Locations          []HostLocationInput `json:"locations,omitempty"`
	Vehicles           []HostVehicleInput  `json:"vehicles,omitempty"`
	InsuranceStatus    string              `json:"insuranceStatus,omitempty"`
	Handoff            string              `json:"handoff,omitempty"`
	PricingExpectation string              `json:"pricingExpectation,omitempty" validate:"omitempty,no_xss"`
	FleetSize          string              `json:"fleetSize,omitempty"`
	Notes              string              `json:"notes,omitempty" validate:"omitempty,no_xss"`
}

// RenterDatesInput là khoảng thời gian renter muốn thuê
type RenterDatesInput struct {
	EarliestStart       string `json:"earliestStart,omitempty"` // ISO yyyy-mm-dd
	LatestStart         string `json:"latestStart,omitempty"`   // ISO yyyy-mm-dd
	TypicalDurationBand string `json:"typicalDurationBand,omitempty"`
}

// RenterPrefsInput là sở thích xe của renter
type RenterPrefsInput struct {
	BodyType     string   `json:"bodyType,omitempty"`
	Seats        *int     `json:"seats,omitempty"`
	Transmission string   `json:"transmission,omitempty"`
	Extras       []string `json:"extras,omitempty"`
}

// RenterDetailsInput là khối enrichment của vai trò renter
type RenterDetailsInput struct {
	Pickup     *HostLocationInput `json:"pickup,omitempty"`
	Dates      *RenterDatesInput  `json:"dates,omitempty"`
	Prefs      *RenterPrefsInput  `json:"prefs,omitempty"`
	BudgetBand string             `json:"budgetBand,omitempty"`
	AgeBand    string             `json:"ageBand,omitempty"`
	Notes      string             `json:"notes,omitempty" validate:"omitempty,no_xss"`
}

// LeadEnrichInput là payload enrichment — cần ít nhất một khối details
type LeadEnrichInput struct {
	CaptchaToken  string              `json:"captchaToken"` // Bắt buộc
	Honeypot      string              `json:"honeypot,omitempty"`
	Website       string              `json:"website,omitempty"` // Legacy honeypot
	HostDetails   *HostDetailsInput   `json:"hostDetails,omitempty"`
	RenterDetails *RenterDetailsInput `json:"renterDetails,omitempty"`
}

// ScoreReason là một lý do chấm điểm kèm số điểm cố định
type ScoreReason struct {
	Code   string `json:"code"`
	Points int    `json:"points"`
}

// LeadCaptureResponse trả về sau quick capture
type LeadCaptureResponse struct {
	ID           string   `json:"id"`
	Roles        []string `json:"roles,omitempty"`
	StageHost    string   `json:"stageHost,omitempty"`
	StageRenter  string   `json:"stageRenter,omitempty"`
	ScoreHost    int      `json:"scoreHost"`
	ScoreRenter  int      `json:"scoreRenter"`
	ScoreVersion string   `json:"scoreVersion,omitempty"`
	Status       string   `json:"status"` // received | duplicate
}

// LeadEnrichResponse trả về sau enrichment, kèm lý do chấm điểm
type LeadEnrichResponse struct {
	ID            string        `json:"id"`
	StageHost     string        `json:"stageHost"`
	StageRenter   string        `json:"stageRenter"`
	ScoreHost     int           `json:"scoreHost"`
	ScoreRenter   int           `json:"scoreRenter"`
	ReasonsHost   []ScoreReason `json:"reasonsHost,omitempty"`
	ReasonsRenter []ScoreReason `json:"reasonsRenter,omitempty"`
	ScoreVersion  string        `json:"scoreVersion,omitempty"`
	Status        string        `json:"status"` // received | duplicate
}
