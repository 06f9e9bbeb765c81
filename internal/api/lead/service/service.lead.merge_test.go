package leadsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/models"
)

func TestMergeHostDetails_NilCases(t *testing.T) {
	existing := &models.HostDetails{FleetSize: "2_3"}
	assert.Same(t, existing, MergeHostDetails(existing, nil), "incoming nil giữ nguyên existing")

	incoming := &models.HostDetails{FleetSize: "4_9"}
	merged := MergeHostDetails(nil, incoming)
	require.NotNil(t, merged)
	assert.Equal(t, "4_9", merged.FleetSize)
	assert.NotSame(t, incoming, merged, "phải copy, không alias incoming")
}

func TestMergeHostDetails_NonEmptyOverwrites(t *testing.T) {
	existing := &models.HostDetails{
		Vehicles:        []models.HostVehicle{{Year: "2018", Make: "Ford", Model: "Focus"}},
		InsuranceStatus: "personal",
		Handoff:         "in_person",
		Notes:           "ghi chú cũ",
	}
	incoming := &models.HostDetails{
		Vehicles: []models.HostVehicle{{Year: "2022", Make: "Kia", Model: "Carnival"}},
		Handoff:  "lockbox",
	}

	merged := MergeHostDetails(existing, incoming)
	assert.Equal(t, "Kia", merged.Vehicles[0].Make, "danh sách mới thay thế danh sách cũ")
	assert.Equal(t, "lockbox", merged.Handoff)
	assert.Equal(t, "personal", merged.InsuranceStatus, "trường vắng mặt giữ giá trị cũ")
	assert.Equal(t, "ghi chú cũ", merged.Notes)
	assert.Equal(t, "in_person", existing.Handoff, "existing không được mutate")
}

func TestMergeRenterDetails_NonEmptyOverwrites(t *testing.T) {
	existing := &models.RenterDetails{
		Dates:      &models.RenterDates{EarliestStart: "2026-09-01"},
		BudgetBand: "50_80",
		AgeBand:    "21_24",
	}
	incoming := &models.RenterDetails{
		Prefs:      &models.RenterPrefs{BodyType: "SUV"},
		BudgetBand: "120_plus",
	}

	merged := MergeRenterDetails(existing, incoming)
	assert.Equal(t, "120_plus", merged.BudgetBand)
	assert.Equal(t, "21_24", merged.AgeBand)
	assert.Equal(t, "SUV", merged.Prefs.BodyType)
	assert.Equal(t, "2026-09-01", merged.Dates.EarliestStart, "dates cũ giữ nguyên khi không gửi lại")
}

func TestMergeMeta_PerFieldOverwrite(t *testing.T) {
	existing := models.LeadMeta{
		IPHash:    "hash-cũ",
		UserAgent: "ua-cũ",
		UTMs:      models.UTMParams{Source: "google", Campaign: "spring"},
	}
	incoming := models.LeadMeta{
		IPHash: "hash-mới",
		UTMs:   models.UTMParams{Source: "facebook"},
	}

	merged := MergeMeta(existing, incoming)
	assert.Equal(t, "hash-mới", merged.IPHash)
	assert.Equal(t, "ua-cũ", merged.UserAgent)
	assert.Equal(t, "facebook", merged.UTMs.Source, "UTM merge theo từng trường")
	assert.Equal(t, "spring", merged.UTMs.Campaign, "UTM vắng mặt giữ giá trị cũ")
}

func TestUnionRoles(t *testing.T) {
	assert.Equal(t, []string{"host"}, UnionRoles(nil, []string{"host"}))
	assert.Equal(t, []string{"host", "renter"}, UnionRoles([]string{"host"}, []string{"renter"}))
	assert.Equal(t, []string{"host"}, UnionRoles([]string{"host"}, []string{"host"}), "role trùng không được thêm lại")
	assert.Equal(t, []string{"renter", "host"}, UnionRoles([]string{"renter"}, []string{"host", "renter"}),
		"thứ tự xuất hiện phải giữ nguyên")
}

func TestLegacyType(t *testing.T) {
	assert.Equal(t, "host", LegacyType([]string{"host"}, ""))
	assert.Equal(t, "host", LegacyType([]string{"host", "renter"}, "host"), "nhiều role giữ type đã biết")
	assert.Equal(t, "", LegacyType(nil, ""))
}
