package leadsvc

import (
	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/models"
)

// Merge semantics thống nhất cho mọi khối details: trường mới không rỗng
// thì ghi đè, trường vắng mặt / rỗng thì giữ nguyên giá trị cũ.
// Merge tường minh field-by-field để semantics audit và test được.

// MergeHostDetails gộp khối host details mới vào khối đã lưu
func MergeHostDetails(existing, incoming *models.HostDetails) *models.HostDetails {
	if incoming == nil {
		return existing
	}
	if existing == nil {
		merged := *incoming
		return &merged
	}

	merged := *existing
	if len(incoming.Locations) > 0 {
		merged.Locations = incoming.Locations
	}
	if len(incoming.Vehicles) > 0 {
		merged.Vehicles = incoming.Vehicles
	}
	if incoming.InsuranceStatus != "" {
		merged.InsuranceStatus = incoming.InsuranceStatus
	}
	if incoming.Handoff != "" {
		merged.Handoff = incoming.Handoff
	}
	if incoming.PricingExpectation != "" {
		merged.PricingExpectation = incoming.PricingExpectation
	}
	if incoming.FleetSize != "" {
		merged.FleetSize = incoming.FleetSize
	}
	if incoming.Notes != "" {
		merged.Notes = incoming.Notes
	}
	return &merged
}

// MergeRenterDetails gộp khối renter details mới vào khối đã lưu
func MergeRenterDetails(existing, incoming *models.RenterDetails) *models.RenterDetails {
	if incoming == nil {
		return existing
	}
	if existing == nil {
		merged := *incoming
		return &merged
	}

	merged := *existing
	if incoming.Pickup != nil {
		merged.Pickup = incoming.Pickup
	}
	if incoming.Dates != nil {
		merged.Dates = incoming.Dates
	}
	if incoming.Prefs != nil {
		merged.Prefs = incoming.Prefs
	}
	if incoming.BudgetBand != "" {
		merged.BudgetBand = incoming.BudgetBand
	}
	if incoming.AgeBand != "" {
		merged.AgeBand = incoming.AgeBand
	}
	if incoming.Notes != "" {
		merged.Notes = incoming.Notes
	}
	return &merged
}

// MergeMeta gộp telemetry — giá trị mới không rỗng ghi đè giá trị cũ
func MergeMeta(existing, incoming models.LeadMeta) models.LeadMeta {
	merged := existing
	if incoming.IPHash != "" {
		merged.IPHash = incoming.IPHash
	}
	if incoming.UserAgent != "" {
		merged.UserAgent = incoming.UserAgent
	}
	if incoming.Referrer != "" {
		merged.Referrer = incoming.Referrer
	}
	if incoming.UTMs.Source != "" {
		merged.UTMs.Source = incoming.UTMs.Source
	}
	if incoming.UTMs.Medium != "" {
		merged.UTMs.Medium = incoming.UTMs.Medium
	}
	if incoming.UTMs.Campaign != "" {
		merged.UTMs.Campaign = incoming.UTMs.Campaign
	}
	if incoming.UTMs.Term != "" {
		merged.UTMs.Term = incoming.UTMs.Term
	}
	if incoming.UTMs.Content != "" {
		merged.UTMs.Content = incoming.UTMs.Content
	}
	return merged
}

// UnionRoles trả về roles cũ cộng role mới chưa có, giữ thứ tự xuất hiện
func UnionRoles(existing, added []string) []string {
	out := append([]string{}, existing...)
	for _, r := range added {
		found := false
		for _, e := range out {
			if e == r {
				found = true
				break
			}
		}
		if !found {
			out = append(out, r)
		}
	}
	return out
}

// LegacyType trả về legacy mirror của roles: đúng 1 role thì mirror role đó,
// ngược lại giữ giá trị đã biết trước đó
func LegacyType(roles []string, current string) string {
	if len(roles) == 1 {
		return roles[0]
	}
	return current
}
