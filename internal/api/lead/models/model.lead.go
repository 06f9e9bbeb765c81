package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadRole định nghĩa vai trò của lead
const (
	LeadRoleHost   = "host"   // Chủ xe muốn cho thuê
	LeadRoleRenter = "renter" // Người muốn thuê xe
)

// LeadStage định nghĩa mức độ thu thập dữ liệu theo từng vai trò.
// Chỉ tiến, không lùi: n/a → quick → enriched.
const (
	LeadStageNA       = "n/a"      // Chưa có dữ liệu cho vai trò này
	LeadStageQuick    = "quick"    // Đã qua quick capture
	LeadStageEnriched = "enriched" // Đã bổ sung chi tiết
)

// GeoPoint là điểm GeoJSON (index 2dsphere)
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`               // Luôn là "Point"
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // [lng, lat]
}

// UTMParams chứa các tham số UTM theo submission gần nhất
type UTMParams struct {
	Source   string `json:"source,omitempty" bson:"source,omitempty"`
	Medium   string `json:"medium,omitempty" bson:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty" bson:"campaign,omitempty"`
	Term     string `json:"term,omitempty" bson:"term,omitempty"`
	Content  string `json:"content,omitempty" bson:"content,omitempty"`
}

// LeadMeta chứa telemetry của submission.
// IPHash là HMAC của IP — IP thô không bao giờ được lưu.
type LeadMeta struct {
	IPHash    string    `json:"ipHash,omitempty" bson:"ipHash,omitempty"`
	UserAgent string    `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	Referrer  string    `json:"referrer,omitempty" bson:"referrer,omitempty"`
	UTMs      UTMParams `json:"utms,omitempty" bson:"utms,omitempty"`
}

// HostLocation là một địa điểm hoạt động của host
type HostLocation struct {
	City  string `json:"city,omitempty" bson:"city,omitempty"`
	State string `json:"state,omitempty" bson:"state,omitempty"`
	Zip5  string `json:"zip5,omitempty" bson:"zip5,omitempty"`
}

// HostVehicle là một xe host khai báo khi enrichment
type HostVehicle struct {
	Year            string `json:"year" bson:"year"`
	Make            string `json:"make" bson:"make"`
	Model           string `json:"model" bson:"model"`
	Trim            string `json:"trim,omitempty" bson:"trim,omitempty"`
	BodyType        string `json:"bodyType,omitempty" bson:"bodyType,omitempty"`               // Sedan, SUV, Truck, Van, EV, Other
	Seats           int    `json:"seats" bson:"seats"`                                         // Clamp [0,15]
	Transmission    string `json:"transmission,omitempty" bson:"transmission,omitempty"`       // Auto, Manual
	MileageBand     string `json:"mileageBand,omitempty" bson:"mileageBand,omitempty"`         // <50k, 50–100k, 100–150k, 150k+
	Availability    string `json:"availability,omitempty" bson:"availability,omitempty"`       // Weekdays, Weekends, Both
	Readiness       string `json:"readiness,omitempty" bson:"readiness,omitempty"`             // Ready now, In 1–3 mo, Just exploring
	Condition       string `json:"condition,omitempty" bson:"condition,omitempty"`             // Excellent, Good, Fair
	MakeNormalized  string `json:"makeNormalized,omitempty" bson:"makeNormalized,omitempty"`   // Bản chuẩn hóa để matching
	ModelNormalized string `json:"modelNormalized,omitempty" bson:"modelNormalized,omitempty"` // Bản chuẩn hóa để matching
	TrimNormalized  string `json:"trimNormalized,omitempty" bson:"trimNormalized,omitempty"`   // Bản chuẩn hóa để matching
}

// HostDetails chứa dữ liệu enrichment của vai trò host
type HostDetails struct {
	Locations          []HostLocation `json:"locations,omitempty" bson:"locations,omitempty"` // Tối đa 5
	Vehicles           []HostVehicle  `json:"vehicles,omitempty" bson:"vehicles,omitempty"`   // Tối đa 20
	InsuranceStatus    string         `json:"insuranceStatus,omitempty" bson:"insuranceStatus,omitempty"` // personal, commercial, unsure
	Handoff            string         `json:"handoff,omitempty" bson:"handoff,omitempty"`                 // in_person, lockbox, both
	PricingExpectation string         `json:"pricingExpectation,omitempty" bson:"pricingExpectation,omitempty"`
	FleetSize          string         `json:"fleetSize,omitempty" bson:"fleetSize,omitempty"` // 1, 2_3, 4_9, 10_plus
	Notes              string         `json:"notes,omitempty" bson:"notes,omitempty"`
}

// RenterDates chứa khoảng thời gian muốn thuê
type RenterDates struct {
	EarliestStart       string `json:"earliestStart,omitempty" bson:"earliestStart,omitempty"` // ISO yyyy-mm-dd
	LatestStart         string `json:"latestStart,omitempty" bson:"latestStart,omitempty"`     // ISO yyyy-mm-dd
	TypicalDurationBand string `json:"typicalDurationBand,omitempty" bson:"typicalDurationBand,omitempty"` // 1-3, 4-7, 8+
}

// RenterPrefs chứa sở thích xe của renter
type RenterPrefs struct {
	BodyType     string   `json:"bodyType,omitempty" bson:"bodyType,omitempty"`
	Seats        int      `json:"seats" bson:"seats"`
	Transmission string   `json:"transmission,omitempty" bson:"transmission,omitempty"`
	Extras       []string `json:"extras,omitempty" bson:"extras,omitempty"` // Tối đa 20 mục × 32 ký tự
}

// RenterDetails chứa dữ liệu enrichment của vai trò renter
type RenterDetails struct {
	Pickup     *HostLocation `json:"pickup,omitempty" bson:"pickup,omitempty"`
	Dates      *RenterDates  `json:"dates,omitempty" bson:"dates,omitempty"`
	Prefs      *RenterPrefs  `json:"prefs,omitempty" bson:"prefs,omitempty"`
	BudgetBand string        `json:"budgetBand,omitempty" bson:"budgetBand,omitempty"` // <50, 50_80, 80_120, 120_plus
	AgeBand    string        `json:"ageBand,omitempty" bson:"ageBand,omitempty"`       // u21, 21_24, 25_plus
	Notes      string        `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Lead là thực thể trung tâm — một bản ghi duy nhất cho mỗi email.
// Email lowercase là natural key, unique index tại tầng collection.
type Lead struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của lead

	// ===== IDENTITY =====
	Email     string `json:"email" bson:"email" index:"unique"` // Lowercase, key duy nhất
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`

	// ===== ROLES =====
	Roles []string `json:"roles" bson:"roles" index:"single:1"` // Tập con của {host, renter}, chỉ thêm không bớt
	Type  string   `json:"type,omitempty" bson:"type,omitempty"` // Legacy mirror khi chỉ có đúng 1 role

	// ===== LOCATION =====
	CityRaw  string    `json:"cityRaw,omitempty" bson:"cityRaw,omitempty"`
	ZipRaw   string    `json:"zipRaw,omitempty" bson:"zipRaw,omitempty"`
	City     string    `json:"city,omitempty" bson:"city,omitempty"`
	State    string    `json:"state,omitempty" bson:"state,omitempty"` // 2 ký tự, uppercase
	Zip5     string    `json:"zip5,omitempty" bson:"zip5,omitempty"`
	CitySlug string    `json:"citySlug,omitempty" bson:"citySlug,omitempty"`
	Geo      *GeoPoint `json:"geo,omitempty" bson:"geo,omitempty"`

	// ===== CONSENT =====
	ConsentMarketing bool   `json:"consentMarketing" bson:"consentMarketing"`
	ConsentedAt      int64  `json:"consentedAt,omitempty" bson:"consentedAt,omitempty"`
	ConsentTextHash  string `json:"consentTextHash,omitempty" bson:"consentTextHash,omitempty"`

	// ===== TELEMETRY =====
	Meta LeadMeta `json:"meta,omitempty" bson:"meta,omitempty"`

	// ===== STAGES & SCORES =====
	StageHost      string `json:"stageHost" bson:"stageHost"`     // n/a, quick, enriched
	StageRenter    string `json:"stageRenter" bson:"stageRenter"` // n/a, quick, enriched
	ScoreHost      int    `json:"scoreHost" bson:"scoreHost" index:"single:-1"`
	ScoreRenter    int    `json:"scoreRenter" bson:"scoreRenter" index:"single:-1"`
	ScoreVersion   string `json:"scoreVersion,omitempty" bson:"scoreVersion,omitempty"`
	ScoreUpdatedAt int64  `json:"scoreUpdatedAt,omitempty" bson:"scoreUpdatedAt,omitempty"`

	// ===== DETAILS =====
	HostDetails   *HostDetails   `json:"hostDetails,omitempty" bson:"hostDetails,omitempty"`
	RenterDetails *RenterDetails `json:"renterDetails,omitempty" bson:"renterDetails,omitempty"`

	// ===== LEGACY =====
	Message   string `json:"message,omitempty" bson:"message,omitempty"`
	Duplicate bool   `json:"duplicate" bson:"duplicate"`
	Status    string `json:"status" bson:"status"` // Mặc định "new"

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}

// HasRole kiểm tra lead có vai trò đó chưa
func (l *Lead) HasRole(role string) bool {
	for _, r := range l.Roles {
		if r == role {
			return true
		}
	}
	return false
}
