package leadsvc

import (
	"sort"
	"strings"
	"time"

	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/dto"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/models"
)

// Phiên bản rule chấm điểm theo vai trò
const (
	scoreVersionHost    = "1.1"
	scoreVersionRenter  = "1.0"
	scoreVersionDefault = "1.0"
)

// ScoreResult là kết quả chấm điểm đầy đủ cho một lead
type ScoreResult struct {
	ScoreHost     int
	ScoreRenter   int
	ReasonsHost   []dto.ScoreReason
	ReasonsRenter []dto.ScoreReason
	Version       string
}

// Scorer chấm điểm chất lượng lead. Thuần túy và deterministic —
// cùng một document luôn cho cùng kết quả. Clock inject được để
// test rule date_soon với thời gian cố định.
type Scorer struct {
	now func() time.Time
}

// NewScorer khởi tạo Scorer dùng đồng hồ hệ thống
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerWithClock khởi tạo Scorer với đồng hồ tùy biến (dành cho test)
func NewScorerWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// ComputeScores chấm điểm các vai trò có mặt trong roles.
// Vai trò vắng mặt cho 0 điểm và không có reasons.
// Version cuối là max theo thứ tự từ điển của các version đã tính.
func (s *Scorer) ComputeScores(lead *models.Lead) ScoreResult {
	result := ScoreResult{}
	var versions []string

	if lead.HasRole(models.LeadRoleHost) {
		total, reasons := s.scoreHost(lead)
		result.ScoreHost = total
		result.ReasonsHost = reasons
		versions = append(versions, scoreVersionHost)
	}
	if lead.HasRole(models.LeadRoleRenter) {
		total, reasons := s.scoreRenter(lead)
		result.ScoreRenter = total
		result.ReasonsRenter = reasons
		versions = append(versions, scoreVersionRenter)
	}

	sort.Strings(versions)
	if len(versions) > 0 {
		result.Version = versions[len(versions)-1]
	} else {
		result.Version = scoreVersionDefault
	}
	return result
}

// scoreHost áp dụng rule set host v1.1, reasons theo đúng thứ tự rule
func (s *Scorer) scoreHost(lead *models.Lead) (int, []dto.ScoreReason) {
	total := 0
	var reasons []dto.ScoreReason
	add := func(code string, points int) {
		total += points
		reasons = append(reasons, dto.ScoreReason{Code: code, Points: points})
	}

	city := lead.City
	if city == "" && lead.HostDetails != nil && len(lead.HostDetails.Locations) > 0 {
		city = lead.HostDetails.Locations[0].City
	}
	cityLower := strings.ToLower(city)
	if strings.Contains(cityLower, "lincoln") || strings.Contains(cityLower, "omaha") {
		add("city_target", 2)
	}

	var vehicles []models.HostVehicle
	if lead.HostDetails != nil {
		vehicles = lead.HostDetails.Vehicles
	}
	if anyVehicle(vehicles, func(v models.HostVehicle) bool { return v.Seats >= 5 }) {
		add("seats_5_plus", 1)
	}
	if anyVehicle(vehicles, func(v models.HostVehicle) bool { return v.BodyType == "SUV" || v.BodyType == "Van" }) {
		add("bodytype_family", 1)
	}
	if anyVehicle(vehicles, func(v models.HostVehicle) bool { return v.Readiness == "Ready now" }) {
		add("ready_now", 2)
	}
	if anyVehicle(vehicles, func(v models.HostVehicle) bool { return v.Condition == "Excellent" }) {
		add("condition_excellent", 1)
	}

	handoff := "both"
	fleet := "1"
	if lead.HostDetails != nil {
		if lead.HostDetails.Handoff != "" {
			handoff = lead.HostDetails.Handoff
		}
		if lead.HostDetails.FleetSize != "" {
			fleet = lead.HostDetails.FleetSize
		}
	}
	if handoff == "lockbox" || handoff == "both" {
		add("handoff_easy", 1)
	}
	if fleet == "2_3" || fleet == "4_9" || fleet == "10_plus" {
		add("fleet_multi", 1)
	}

	return total, reasons
}

// scoreRenter áp dụng rule set renter v1.0
func (s *Scorer) scoreRenter(lead *models.Lead) (int, []dto.ScoreReason) {
	total := 0
	var reasons []dto.ScoreReason
	add := func(code string, points int) {
		total += points
		reasons = append(reasons, dto.ScoreReason{Code: code, Points: points})
	}

	rd := lead.RenterDetails

	// Khoảng ngày [earliest 00:00, latest 23:59:59] giao với [now, now+30d]?
	if rd != nil && rd.Dates != nil && rd.Dates.EarliestStart != "" && rd.Dates.LatestStart != "" {
		esd, errE := time.Parse("2006-01-02", rd.Dates.EarliestStart)
		lsd, errL := time.Parse("2006-01-02", rd.Dates.LatestStart)
		if errE == nil && errL == nil {
			now := s.now()
			in30 := now.Add(30 * 24 * time.Hour)
			lsdEnd := lsd.Add(24*time.Hour - time.Second)
			if !lsdEnd.Before(now) && !esd.After(in30) {
				add("date_soon", 2)
			}
		}
	}

	budget := "50_80"
	if rd != nil && rd.BudgetBand != "" {
		budget = rd.BudgetBand
	}
	if budget == "80_120" || budget == "120_plus" {
		add("budget_high", 2)
	}

	seats := 0
	bodyType := ""
	if rd != nil && rd.Prefs != nil {
		seats = rd.Prefs.Seats
		bodyType = rd.Prefs.BodyType
	}
	if seats >= 5 || bodyType == "SUV" {
		add("family_pref", 1)
	}

	dur := "1-3"
	if rd != nil && rd.Dates != nil && rd.Dates.TypicalDurationBand != "" {
		dur = rd.Dates.TypicalDurationBand
	}
	if dur == "4-7" || dur == "8+" {
		add("duration_longer", 1)
	}

	return total, reasons
}

func anyVehicle(vehicles []models.HostVehicle, pred func(models.HostVehicle) bool) bool {
	for _, v := range vehicles {
		if pred(v) {
			return true
		}
	}
	return false
}
