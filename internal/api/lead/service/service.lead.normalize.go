package leadsvc

import (
	"regexp"
	"strings"
	"time"

	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/dto"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/models"
	"github.com/Friend-Renter/fr-marketing-api/internal/utility"
)

// Giới hạn độ dài các trường (chặn storage growth không kiểm soát)
const (
	maxLenName         = 80
	maxLenEmail        = 120
	maxLenPhone        = 32
	maxLenCityOrZip    = 120
	maxLenCitySlug     = 64
	maxLenCaptchaToken = 2000
	maxLenHoneypot     = 200
	maxLenNotes        = 1000
	maxLenUTM          = 120
	maxLenReferrer     = 512

	maxLocations = 5
	maxVehicles  = 20
	maxExtras    = 20
	maxExtraLen  = 32
	maxSeats     = 15
)

var (
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipRegex    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	cityStRegex = regexp.MustCompile(`^\s*([^,]+?)\s*,\s*([A-Za-z]{2})\s*$`)
)

// CityOrZip là kết quả phân loại input địa điểm tự do
type CityOrZip struct {
	CityRaw string
	ZipRaw  string
	City    string
	State   string
	Zip5    string
}

// NormalizeCityOrZip phân loại input theo thứ tự ưu tiên, match đầu tiên thắng:
// zip 5 số (cho phép +4, giữ 5 số đầu) → "City, ST" → freeform cityRaw.
func NormalizeCityOrZip(input string) CityOrZip {
	s := utility.NormalizeStr(input, maxLenCityOrZip)
	if s == "" {
		return CityOrZip{}
	}

	if zipRegex.MatchString(s) {
		return CityOrZip{ZipRaw: s, Zip5: s[:5]}
	}

	if m := cityStRegex.FindStringSubmatch(s); m != nil {
		return CityOrZip{
			CityRaw: s,
			City:    utility.NormalizeStr(m[1], maxLenCityOrZip),
			State:   strings.ToUpper(m[2]),
		}
	}

	return CityOrZip{CityRaw: s}
}

// LeadCaptureData là kết quả đã chuẩn hóa của quick capture —
// các tầng sau của pipeline chỉ đọc struct này, không bao giờ đọc input thô
type LeadCaptureData struct {
	Roles            []string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	CityRaw          string
	ZipRaw           string
	City             string
	State            string
	Zip5             string
	CitySlug         string
	ConsentMarketing bool
	CaptchaToken     string
	Honeypot         string
	Referrer         string
	UTMs             models.UTMParams
}

// ValidateLeadCapture chuẩn hóa và validate payload quick capture.
// Trả về danh sách lỗi theo thứ tự phát hiện — caller reject với lỗi đầu tiên.
func ValidateLeadCapture(in *dto.LeadCaptureInput) (*LeadCaptureData, []string) {
	var errs []string
	data := &LeadCaptureData{}

	// role hoặc legacy type; landing mặc định là host
	role := utility.NormalizeStr(in.Role, 16)
	if role == "" {
		role = utility.NormalizeStr(in.Type, 16)
	}
	if role == "" {
		role = models.LeadRoleHost
	}
	if role == "both" {
		data.Roles = []string{models.LeadRoleHost, models.LeadRoleRenter}
	} else {
		data.Roles = []string{role}
	}
	for _, r := range data.Roles {
		if r != models.LeadRoleHost && r != models.LeadRoleRenter {
			errs = append(errs, "invalid role")
			break
		}
	}

	data.FirstName = utility.NormalizeStr(in.FirstName, maxLenName)
	if data.FirstName == "" {
		errs = append(errs, "firstName required")
	}
	data.LastName = utility.NormalizeStr(in.LastName, maxLenName)

	data.Email = strings.ToLower(utility.NormalizeStr(in.Email, maxLenEmail))
	if data.Email == "" || !emailRegex.MatchString(data.Email) {
		errs = append(errs, "invalid email")
	}

	data.Phone = utility.NormalizeStr(in.Phone, maxLenPhone)

	cz := NormalizeCityOrZip(in.CityOrZip)
	data.CityRaw = cz.CityRaw
	data.ZipRaw = cz.ZipRaw
	data.City = cz.City
	data.State = cz.State
	data.Zip5 = cz.Zip5
	data.CitySlug = utility.NormalizeStr(in.CitySlug, maxLenCitySlug)

	// consent từ trường mới hoặc legacy consentMarketing, phải là true
	consent := false
	if in.Consent != nil {
		consent = *in.Consent
	} else if in.ConsentMarketing != nil {
		consent = *in.ConsentMarketing
	}
	if !consent {
		errs = append(errs, "consent required")
	}
	data.ConsentMarketing = consent

	data.CaptchaToken = utility.NormalizeStr(in.CaptchaToken, maxLenCaptchaToken)
	if data.CaptchaToken == "" {
		errs = append(errs, "captchaToken required")
	}

	data.Referrer = utility.NormalizeStr(in.Referrer, maxLenReferrer)
	data.UTMs = models.UTMParams{
		Source:   utility.NormalizeStr(in.UTMSource, maxLenUTM),
		Medium:   utility.NormalizeStr(in.UTMMedium, maxLenUTM),
		Campaign: utility.NormalizeStr(in.UTMCampaign, maxLenUTM),
		Term:     utility.NormalizeStr(in.UTMTerm, maxLenUTM),
		Content:  utility.NormalizeStr(in.UTMContent, maxLenUTM),
	}

	data.Honeypot = firstNonEmpty(in.Honeypot, in.Website, maxLenHoneypot)

	return data, errs
}

// LeadEnrichData là kết quả đã chuẩn hóa của enrichment
type LeadEnrichData struct {
	CaptchaToken  string
	Honeypot      string
	HostDetails   *models.HostDetails
	RenterDetails *models.RenterDetails
}

// ValidateLeadEnrich chuẩn hóa và validate payload enrichment.
// Mỗi xe bắt buộc có year/make/model — thiếu là reject cả request,
// kể cả khi các xe khác hợp lệ.
func ValidateLeadEnrich(in *dto.LeadEnrichInput) (*LeadEnrichData, []string) {
	var errs []string
	data := &LeadEnrichData{}

	data.CaptchaToken = utility.NormalizeStr(in.CaptchaToken, maxLenCaptchaToken)
	if data.CaptchaToken == "" {
		errs = append(errs, "captchaToken required")
	}
	data.Honeypot = firstNonEmpty(in.Honeypot, in.Website, maxLenHoneypot)

	if in.HostDetails == nil && in.RenterDetails == nil {
		errs = append(errs, "no details provided")
	}

	if in.HostDetails != nil {
		out, hostErrs := normalizeHostDetails(in.HostDetails)
		errs = append(errs, hostErrs...)
		data.HostDetails = out
	}

	if in.RenterDetails != nil {
		out, renterErrs := normalizeRenterDetails(in.RenterDetails)
		errs = append(errs, renterErrs...)
		data.RenterDetails = out
	}

	return data, errs
}

func normalizeHostDetails(hd *dto.HostDetailsInput) (*models.HostDetails, []string) {
	var errs []string
	out := &models.HostDetails{}

	if len(hd.Locations) > 0 {
		locs := hd.Locations
		if len(locs) > maxLocations {
			locs = locs[:maxLocations]
		}
		for _, l := range locs {
			loc := models.HostLocation{
				City:  utility.NormalizeStr(l.City, maxLenCityOrZip),
				State: strings.ToUpper(utility.NormalizeStr(l.State, 2)),
				Zip5:  utility.NormalizeStr(l.Zip5, 5),
			}
			// Giữ lại entry có city hoặc zip5, bỏ entry rỗng
			if loc.City != "" || loc.Zip5 != "" {
				out.Locations = append(out.Locations, loc)
			}
		}
	}

	if len(hd.Vehicles) > 0 {
		vehicles := hd.Vehicles
		if len(vehicles) > maxVehicles {
			vehicles = vehicles[:maxVehicles]
		}
		for _, v := range vehicles {
			veh := models.HostVehicle{
				Year:         utility.NormalizeStr(v.Year, 8),
				Make:         utility.NormalizeStr(v.Make, 40),
				Model:        utility.NormalizeStr(v.Model, 60),
				Trim:         utility.NormalizeStr(v.Trim, 60),
				BodyType:     clampEnum(v.BodyType, []string{"Sedan", "SUV", "Truck", "Van", "EV", "Other"}, ""),
				Seats:        clampSeats(v.Seats),
				Transmission: clampEnum(v.Transmission, []string{"Auto", "Manual"}, ""),
				MileageBand:  clampEnum(v.MileageBand, []string{"<50k", "50–100k", "100–150k", "150k+"}, ""),
				Availability: clampEnum(v.Availability, []string{"Weekdays", "Weekends", "Both"}, ""),
				Readiness:    clampEnum(v.Readiness, []string{"Ready now", "In 1–3 mo", "Just exploring"}, ""),
				Condition:    clampEnum(v.Condition, []string{"Excellent", "Good", "Fair"}, "Good"),
			}
			if veh.Make != "" {
				veh.MakeNormalized = utility.TitleCaseSmart(veh.Make)
			}
			if veh.Model != "" {
				veh.ModelNormalized = utility.TitleCaseSmart(veh.Model)
			}
			if veh.Trim != "" {
				veh.TrimNormalized = utility.TitleCaseSmart(veh.Trim)
			}
			out.Vehicles = append(out.Vehicles, veh)
		}
		for _, v := range out.Vehicles {
			if v.Year == "" || v.Make == "" || v.Model == "" {
				errs = append(errs, "vehicle requires year/make/model")
				break
			}
		}
	}

	out.InsuranceStatus = clampEnum(hd.InsuranceStatus, []string{"personal", "commercial", "unsure"}, "unsure")
	out.Handoff = clampEnum(hd.Handoff, []string{"in_person", "lockbox", "both"}, "both")
	out.PricingExpectation = utility.NormalizeStr(hd.PricingExpectation, 64)
	out.FleetSize = clampEnum(hd.FleetSize, []string{"1", "2_3", "4_9", "10_plus"}, "1")
	out.Notes = utility.NormalizeStr(hd.Notes, maxLenNotes)

	return out, errs
}

func normalizeRenterDetails(rd *dto.RenterDetailsInput) (*models.RenterDetails, []string) {
	var errs []string
	out := &models.RenterDetails{}

	if rd.Pickup != nil {
		out.Pickup = &models.HostLocation{
			City:  utility.NormalizeStr(rd.Pickup.City, maxLenCityOrZip),
			State: strings.ToUpper(utility.NormalizeStr(rd.Pickup.State, 2)),
			Zip5:  utility.NormalizeStr(rd.Pickup.Zip5, 5),
		}
	}

	if rd.Dates != nil {
		earliest := utility.NormalizeStr(rd.Dates.EarliestStart, 10)
		latest := utility.NormalizeStr(rd.Dates.LatestStart, 10)
		if earliest != "" && !isISODate(earliest) {
			errs = append(errs, "dates invalid: bad format")
			earliest = ""
		}
		if latest != "" && !isISODate(latest) {
			errs = append(errs, "dates invalid: bad format")
			latest = ""
		}
		if earliest != "" && latest != "" && earliest > latest {
			errs = append(errs, "dates invalid: earliest > latest")
		}
		out.Dates = &models.RenterDates{
			EarliestStart:       earliest,
			LatestStart:         latest,
			TypicalDurationBand: clampEnum(rd.Dates.TypicalDurationBand, []string{"1-3", "4-7", "8+"}, "1-3"),
		}
	}

	if rd.Prefs != nil {
		prefs := &models.RenterPrefs{
			BodyType:     utility.NormalizeStr(rd.Prefs.BodyType, 32),
			Seats:        clampSeats(rd.Prefs.Seats),
			Transmission: utility.NormalizeStr(rd.Prefs.Transmission, 16),
		}
		if prefs.BodyType == "" {
			prefs.BodyType = "No preference"
		}
		if prefs.Transmission == "" {
			prefs.Transmission = "No preference"
		}
		extras := rd.Prefs.Extras
		if len(extras) > maxExtras {
			extras = extras[:maxExtras]
		}
		for _, x := range extras {
			if s := utility.NormalizeStr(x, maxExtraLen); s != "" {
				prefs.Extras = append(prefs.Extras, s)
			}
		}
		out.Prefs = prefs
	}

	out.BudgetBand = clampEnum(rd.BudgetBand, []string{"<50", "50_80", "80_120", "120_plus"}, "50_80")
	out.AgeBand = clampEnum(rd.AgeBand, []string{"u21", "21_24", "25_plus"}, "25_plus")
	out.Notes = utility.NormalizeStr(rd.Notes, maxLenNotes)

	return out, errs
}

// clampEnum trả về giá trị nếu nằm trong tập cho phép, ngược lại là fallback
func clampEnum(val string, allowed []string, fallback string) string {
	x := utility.NormalizeStr(val, 32)
	for _, a := range allowed {
		if x == a {
			return x
		}
	}
	return fallback
}

// clampSeats ép seats vào [0, 15], thiếu hoặc âm là 0
func clampSeats(seats *int) int {
	if seats == nil || *seats < 0 {
		return 0
	}
	if *seats > maxSeats {
		return maxSeats
	}
	return *seats
}

// isISODate kiểm tra chuỗi là ngày lịch hợp lệ dạng yyyy-mm-dd
func isISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func firstNonEmpty(a, b string, max int) string {
	if s := utility.NormalizeStr(a, max); s != "" {
		return s
	}
	return utility.NormalizeStr(b, max)
}
