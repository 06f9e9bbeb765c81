package leadsvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/dto"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/models"
)

// Đồng hồ cố định để rule date_soon deterministic trong test
var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testScorer() *Scorer {
	return NewScorerWithClock(func() time.Time { return testNow })
}

func reasonCodes(reasons []dto.ScoreReason) []string {
	codes := make([]string, 0, len(reasons))
	for _, r := range reasons {
		codes = append(codes, r.Code)
	}
	return codes
}

func TestComputeScores_HostFullMatch(t *testing.T) {
	lead := &models.Lead{
		Roles: []string{"host"},
		City:  "Lincoln",
		HostDetails: &models.HostDetails{
			Vehicles: []models.HostVehicle{
				{Year: "2022", Make: "Honda", Model: "Odyssey", BodyType: "Van", Seats: 7, Readiness: "Ready now", Condition: "Excellent"},
			},
			Handoff:   "lockbox",
			FleetSize: "2_3",
		},
	}

	result := testScorer().ComputeScores(lead)
	assert.Equal(t, 9, result.ScoreHost, "2+1+1+2+1+1+1 = 9")
	assert.Equal(t, 0, result.ScoreRenter)
	assert.Equal(t, "1.1", result.Version)
	assert.Equal(t, []string{
		"city_target",
		"seats_5_plus",
		"bodytype_family",
		"ready_now",
		"condition_excellent",
		"handoff_easy",
		"fleet_multi",
	}, reasonCodes(result.ReasonsHost), "reasons phải theo đúng thứ tự rule")
}

func TestComputeScores_HostDefaults(t *testing.T) {
	// Lead host tối thiểu không có details: chỉ handoff_easy từ default "both"
	lead := &models.Lead{Roles: []string{"host"}}
	result := testScorer().ComputeScores(lead)
	assert.Equal(t, 1, result.ScoreHost)
	assert.Equal(t, []string{"handoff_easy"}, reasonCodes(result.ReasonsHost))
}

func TestComputeScores_HostCityFromFirstLocation(t *testing.T) {
	// Không có city top-level — lấy city của location đầu tiên
	lead := &models.Lead{
		Roles: []string{"host"},
		HostDetails: &models.HostDetails{
			Locations: []models.HostLocation{{City: "West Omaha"}, {City: "Denver"}},
			Handoff:   "in_person",
		},
	}
	result := testScorer().ComputeScores(lead)
	assert.Contains(t, reasonCodes(result.ReasonsHost), "city_target", "match substring không phân biệt hoa thường")
	assert.NotContains(t, reasonCodes(result.ReasonsHost), "handoff_easy", "in_person không được cộng điểm handoff")
}

func TestComputeScores_RenterDateSoonInside(t *testing.T) {
	lead := &models.Lead{
		Roles: []string{"renter"},
		RenterDetails: &models.RenterDetails{
			Dates: &models.RenterDates{EarliestStart: "2026-08-10", LatestStart: "2026-08-20"},
		},
	}
	result := testScorer().ComputeScores(lead)
	assert.Contains(t, reasonCodes(result.ReasonsRenter), "date_soon")
	assert.Equal(t, "1.0", result.Version)
}

func TestComputeScores_RenterDateSoonOutside(t *testing.T) {
	// Khoảng bắt đầu sau now+30d — không cộng điểm
	lead := &models.Lead{
		Roles: []string{"renter"},
		RenterDetails: &models.RenterDetails{
			Dates: &models.RenterDates{EarliestStart: "2026-09-15", LatestStart: "2026-09-20"},
		},
	}
	result := testScorer().ComputeScores(lead)
	assert.NotContains(t, reasonCodes(result.ReasonsRenter), "date_soon")
}

func TestComputeScores_RenterDateSoonBoundary(t *testing.T) {
	// latest = hôm nay: cửa sổ [latest 00:00, latest 23:59:59] vẫn giao với now
	lead := &models.Lead{
		Roles: []string{"renter"},
		RenterDetails: &models.RenterDetails{
			Dates: &models.RenterDates{EarliestStart: "2026-07-01", LatestStart: "2026-08-01"},
		},
	}
	result := testScorer().ComputeScores(lead)
	assert.Contains(t, reasonCodes(result.ReasonsRenter), "date_soon")
}

func TestComputeScores_RenterFullMatch(t *testing.T) {
	lead := &models.Lead{
		Roles: []string{"renter"},
		RenterDetails: &models.RenterDetails{
			Dates:      &models.RenterDates{EarliestStart: "2026-08-05", LatestStart: "2026-08-10", TypicalDurationBand: "8+"},
			Prefs:      &models.RenterPrefs{BodyType: "SUV", Seats: 3},
			BudgetBand: "120_plus",
		},
	}
	result := testScorer().ComputeScores(lead)
	assert.Equal(t, 6, result.ScoreRenter, "2+2+1+1 = 6")
	assert.Equal(t, []string{"date_soon", "budget_high", "family_pref", "duration_longer"},
		reasonCodes(result.ReasonsRenter))
}

func TestComputeScores_RenterDefaults(t *testing.T) {
	// Renter không có details: budget mặc định 50_80, duration 1-3 — 0 điểm
	lead := &models.Lead{Roles: []string{"renter"}}
	result := testScorer().ComputeScores(lead)
	assert.Equal(t, 0, result.ScoreRenter)
	assert.Empty(t, result.ReasonsRenter)
}

func TestComputeScores_RoleGating(t *testing.T) {
	// Có renterDetails nhưng không có role renter — không được chấm renter
	lead := &models.Lead{
		Roles:         []string{"host"},
		RenterDetails: &models.RenterDetails{BudgetBand: "120_plus"},
	}
	result := testScorer().ComputeScores(lead)
	assert.Equal(t, 0, result.ScoreRenter)
	assert.Empty(t, result.ReasonsRenter)
}

func TestComputeScores_VersionIsMax(t *testing.T) {
	lead := &models.Lead{Roles: []string{"host", "renter"}}
	result := testScorer().ComputeScores(lead)
	assert.Equal(t, "1.1", result.Version, "cả hai role thì version là max")

	noRoles := &models.Lead{}
	assert.Equal(t, "1.0", testScorer().ComputeScores(noRoles).Version, "không role nào thì fallback 1.0")
}

func TestComputeScores_Deterministic(t *testing.T) {
	lead := &models.Lead{
		Roles: []string{"host", "renter"},
		City:  "Omaha",
		HostDetails: &models.HostDetails{
			Vehicles:  []models.HostVehicle{{Year: "2020", Make: "Toyota", Model: "Sienna", BodyType: "Van", Seats: 8}},
			FleetSize: "4_9",
		},
		RenterDetails: &models.RenterDetails{BudgetBand: "80_120"},
	}

	s := testScorer()
	first := s.ComputeScores(lead)
	second := s.ComputeScores(lead)
	require.Equal(t, first, second, "cùng document phải cho cùng kết quả")
}
