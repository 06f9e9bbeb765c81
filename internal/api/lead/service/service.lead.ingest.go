package leadsvc

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Friend-Renter/fr-marketing-api/config"
	basesvc "github.com/Friend-Renter/fr-marketing-api/internal/api/base/service"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/dto"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/models"
	"github.com/Friend-Renter/fr-marketing-api/internal/common"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
	"github.com/Friend-Renter/fr-marketing-api/internal/utility"
)

// CaptchaVerifier xác minh token CAPTCHA — nil error là hợp lệ
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// IdempotencyGuard chống xử lý trùng lặp trong cửa sổ TTL
type IdempotencyGuard interface {
	Claim(ctx context.Context, kind, explicitKey string, fields ...string) (bool, error)
}

// AbuseLimiter kiểm tra các ngưỡng rate limit
type AbuseLimiter interface {
	CheckCapture(ctx context.Context, ip, email string) error
	CheckEnrich(ctx context.Context, email string) error
}

// RequestMeta là ngữ cảnh request mà pipeline cần từ tầng transport
type RequestMeta struct {
	IP             string
	UserAgent      string
	Referrer       string // Referer header
	IdempotencyKey string // X-Idempotency-Key header, optional
}

// LeadService điều phối pipeline ingestion:
// validate → idempotency → honeypot → rate limit → captcha → upsert/merge → score.
// Thứ tự cố định — honeypot đứng trước rate limit để bot không làm bẩn counter.
type LeadService struct {
	leads      basesvc.BaseServiceMongo[models.Lead]
	limiter    AbuseLimiter
	idem       IdempotencyGuard
	captcha    CaptchaVerifier
	scorer     *Scorer
	hashSecret string
}

// NewLeadService khởi tạo LeadService
func NewLeadService(
	leads basesvc.BaseServiceMongo[models.Lead],
	limiter AbuseLimiter,
	idem IdempotencyGuard,
	captcha CaptchaVerifier,
	scorer *Scorer,
	cfg *config.Configuration,
) *LeadService {
	return &LeadService{
		leads:      leads,
		limiter:    limiter,
		idem:       idem,
		captcha:    captcha,
		scorer:     scorer,
		hashSecret: cfg.EmailHashSecret(),
	}
}

// QuickCapture xử lý submission bước 1: tạo mới hoặc merge lead tối thiểu.
// Upsert nguyên tử tại tầng document ($setOnInsert + $set + $addToSet)
// để các request đồng thời cùng email không làm mất role/field.
func (s *LeadService) QuickCapture(ctx context.Context, in *dto.LeadCaptureInput, req RequestMeta) (*dto.LeadCaptureResponse, error) {
	// 1) Validate — lỗi đầu tiên trả về trong 400
	data, errs := ValidateLeadCapture(in)
	if len(errs) > 0 {
		return nil, common.NewError(common.ErrCodeValidationInput, errs[0], common.StatusBadRequest, errs)
	}

	// 2) Idempotency — bản lặp trả "duplicate", không xử lý lại
	cityOrZip := utility.NormalizeStr(in.CityOrZip, maxLenCityOrZip)
	claimed, err := s.idem.Claim(ctx, "capture", req.IdempotencyKey,
		strings.Join(data.Roles, ","), data.Email, cityOrZip)
	if err != nil {
		return nil, err
	}
	if !claimed {
		resp := &dto.LeadCaptureResponse{Status: common.MsgDuplicate}
		// Best-effort: trả id của lead đã có nếu tìm thấy
		if existing, ferr := s.leads.FindOne(ctx, bson.M{"email": data.Email}, nil); ferr == nil {
			resp.ID = existing.ID.Hex()
		}
		return resp, nil
	}

	// 3) Honeypot — soft accept, không rate limit, không captcha, không lưu
	if data.Honeypot != "" {
		return &dto.LeadCaptureResponse{Status: common.MsgReceived}, nil
	}

	// 4) Rate limits
	if err := s.limiter.CheckCapture(ctx, req.IP, data.Email); err != nil {
		return nil, err
	}

	// 5) CAPTCHA
	if err := s.captcha.Verify(ctx, data.CaptchaToken, req.IP); err != nil {
		return nil, err
	}

	// 6) Upsert theo email
	now := utility.CurrentTimeInMilli()
	meta := s.buildMeta(data, req)

	set := bson.M{
		"updatedAt":        now,
		"consentMarketing": data.ConsentMarketing,
		"consentedAt":      now,
	}
	setNonEmpty(set, "firstName", data.FirstName)
	setNonEmpty(set, "lastName", data.LastName)
	setNonEmpty(set, "phone", data.Phone)
	setNonEmpty(set, "cityRaw", data.CityRaw)
	setNonEmpty(set, "zipRaw", data.ZipRaw)
	setNonEmpty(set, "city", data.City)
	setNonEmpty(set, "state", data.State)
	setNonEmpty(set, "zip5", data.Zip5)
	setNonEmpty(set, "citySlug", data.CitySlug)
	setNonEmpty(set, "meta.ipHash", meta.IPHash)
	setNonEmpty(set, "meta.userAgent", meta.UserAgent)
	setNonEmpty(set, "meta.referrer", meta.Referrer)
	setNonEmpty(set, "meta.utms.source", meta.UTMs.Source)
	setNonEmpty(set, "meta.utms.medium", meta.UTMs.Medium)
	setNonEmpty(set, "meta.utms.campaign", meta.UTMs.Campaign)
	setNonEmpty(set, "meta.utms.term", meta.UTMs.Term)
	setNonEmpty(set, "meta.utms.content", meta.UTMs.Content)

	update := bson.M{
		"$setOnInsert": bson.M{
			"email":       data.Email,
			"createdAt":   now,
			"stageHost":   models.LeadStageNA,
			"stageRenter": models.LeadStageNA,
			"scoreHost":   0,
			"scoreRenter": 0,
			"duplicate":   false,
			"status":      "new",
		},
		"$set":      set,
		"$addToSet": bson.M{"roles": bson.M{"$each": data.Roles}},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	lead, err := s.leads.FindOneAndUpdate(ctx, bson.M{"email": data.Email}, update, opts)
	if err != nil {
		return nil, err
	}

	// Stage advance tách riêng và có điều kiện: chỉ nâng từ n/a lên quick.
	// $set thẳng stage sẽ kéo lùi stage đã enriched — vi phạm monotonicity.
	for _, role := range data.Roles {
		stageField := "stageHost"
		if role == models.LeadRoleRenter {
			stageField = "stageRenter"
		}
		modified, uerr := s.leads.UpdateOne(ctx,
			bson.M{"email": data.Email, stageField: models.LeadStageNA},
			bson.M{"$set": bson.M{stageField: models.LeadStageQuick}}, nil)
		if uerr != nil {
			return nil, uerr
		}
		if modified > 0 {
			if stageField == "stageHost" {
				lead.StageHost = models.LeadStageQuick
			} else {
				lead.StageRenter = models.LeadStageQuick
			}
		}
	}

	// Legacy type mirror khi có đúng 1 role
	if newType := LegacyType(lead.Roles, lead.Type); newType != lead.Type {
		if _, uerr := s.leads.UpdateOne(ctx, bson.M{"email": data.Email},
			bson.M{"$set": bson.M{"type": newType}}, nil); uerr != nil {
			return nil, uerr
		}
		lead.Type = newType
	}

	// 7) Chấm điểm lại, chỉ persist khi điểm thay đổi
	score := s.scorer.ComputeScores(&lead)
	if score.ScoreHost != lead.ScoreHost || score.ScoreRenter != lead.ScoreRenter || score.Version != lead.ScoreVersion {
		if _, uerr := s.leads.UpdateOne(ctx, bson.M{"email": data.Email}, bson.M{"$set": bson.M{
			"scoreHost":      score.ScoreHost,
			"scoreRenter":    score.ScoreRenter,
			"scoreVersion":   score.Version,
			"scoreUpdatedAt": utility.CurrentTimeInMilli(),
		}}, nil); uerr != nil {
			return nil, uerr
		}
		lead.ScoreHost = score.ScoreHost
		lead.ScoreRenter = score.ScoreRenter
		lead.ScoreVersion = score.Version
	}

	return &dto.LeadCaptureResponse{
		ID:           lead.ID.Hex(),
		Roles:        lead.Roles,
		StageHost:    lead.StageHost,
		StageRenter:  lead.StageRenter,
		ScoreHost:    lead.ScoreHost,
		ScoreRenter:  lead.ScoreRenter,
		ScoreVersion: lead.ScoreVersion,
		Status:       common.MsgReceived,
	}, nil
}

// Enrich xử lý submission bước 2: merge chi tiết theo vai trò vào lead đã có.
// Enrichment không bao giờ tạo lead mới — email chưa thấy là 404.
func (s *LeadService) Enrich(ctx context.Context, email string, in *dto.LeadEnrichInput, req RequestMeta) (*dto.LeadEnrichResponse, error) {
	// 1) Email từ query, bắt buộc hợp lệ
	email = strings.ToLower(utility.NormalizeStr(email, maxLenEmail))
	if email == "" || !emailRegex.MatchString(email) {
		return nil, common.NewError(common.ErrCodeValidationInput, "invalid email", common.StatusBadRequest, nil)
	}

	// 2) Validate payload
	data, errs := ValidateLeadEnrich(in)
	if len(errs) > 0 {
		return nil, common.NewError(common.ErrCodeValidationInput, errs[0], common.StatusBadRequest, errs)
	}

	// 3) Idempotency — digest thô của shape payload, không hash full PII
	vehicleCount := 0
	fleetSize := ""
	if data.HostDetails != nil {
		vehicleCount = len(data.HostDetails.Vehicles)
		fleetSize = data.HostDetails.FleetSize
	}
	budgetBand := ""
	durationBand := ""
	if data.RenterDetails != nil {
		budgetBand = data.RenterDetails.BudgetBand
		if data.RenterDetails.Dates != nil {
			durationBand = data.RenterDetails.Dates.TypicalDurationBand
		}
	}
	claimed, err := s.idem.Claim(ctx, "enrich", req.IdempotencyKey,
		email, strconv.Itoa(vehicleCount), fleetSize, budgetBand, durationBand)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return &dto.LeadEnrichResponse{Status: common.MsgDuplicate}, nil
	}

	// Honeypot — soft accept như quick capture
	if data.Honeypot != "" {
		return &dto.LeadEnrichResponse{Status: common.MsgReceived}, nil
	}

	// Rate limit theo email, ngưỡng rộng hơn quick capture
	if err := s.limiter.CheckEnrich(ctx, email); err != nil {
		return nil, err
	}

	if err := s.captcha.Verify(ctx, data.CaptchaToken, req.IP); err != nil {
		return nil, err
	}

	// 4) Lead phải tồn tại sẵn
	lead, err := s.leads.FindOne(ctx, bson.M{"email": email}, nil)
	if err != nil {
		return nil, err
	}

	// 5-6) Merge + chấm điểm, lưu với optimistic check trên updatedAt.
	// Read-merge-save không nguyên tử — hai enrichment đồng thời cùng
	// email có thể mất update, nên so updatedAt và retry một lần.
	for attempt := 0; ; attempt++ {
		merged, score := s.applyEnrichment(&lead, data)

		set := bson.M{
			"roles":          merged.Roles,
			"type":           merged.Type,
			"stageHost":      merged.StageHost,
			"stageRenter":    merged.StageRenter,
			"scoreHost":      score.ScoreHost,
			"scoreRenter":    score.ScoreRenter,
			"scoreVersion":   score.Version,
			"scoreUpdatedAt": utility.CurrentTimeInMilli(),
		}
		if merged.HostDetails != nil {
			set["hostDetails"] = merged.HostDetails
		}
		if merged.RenterDetails != nil {
			set["renterDetails"] = merged.RenterDetails
		}

		modified, uerr := s.leads.UpdateOne(ctx,
			bson.M{"_id": lead.ID, "updatedAt": lead.UpdatedAt},
			bson.M{"$set": set}, nil)
		if uerr != nil {
			return nil, uerr
		}
		if modified > 0 {
			return &dto.LeadEnrichResponse{
				ID:            merged.ID.Hex(),
				StageHost:     merged.StageHost,
				StageRenter:   merged.StageRenter,
				ScoreHost:     score.ScoreHost,
				ScoreRenter:   score.ScoreRenter,
				ReasonsHost:   score.ReasonsHost,
				ReasonsRenter: score.ReasonsRenter,
				ScoreVersion:  score.Version,
				Status:        common.MsgReceived,
			}, nil
		}
		if attempt >= 1 {
			logger.GetErrorLogger().WithField("email", utility.HmacEmail(email, s.hashSecret)).
				Error("Enrichment bị tranh chấp liên tục, bỏ cuộc sau 2 lần thử")
			return nil, common.ErrStoreDown
		}
		// Document đã bị sửa giữa chừng — đọc lại rồi merge lại
		lead, err = s.leads.FindOne(ctx, bson.M{"email": email}, nil)
		if err != nil {
			return nil, err
		}
	}
}

// applyEnrichment merge details vào bản sao của lead và chấm điểm lại
func (s *LeadService) applyEnrichment(lead *models.Lead, data *LeadEnrichData) (*models.Lead, ScoreResult) {
	merged := *lead

	if data.HostDetails != nil {
		merged.HostDetails = MergeHostDetails(merged.HostDetails, data.HostDetails)
		merged.Roles = UnionRoles(merged.Roles, []string{models.LeadRoleHost})
		merged.StageHost = models.LeadStageEnriched
	}
	if data.RenterDetails != nil {
		merged.RenterDetails = MergeRenterDetails(merged.RenterDetails, data.RenterDetails)
		merged.Roles = UnionRoles(merged.Roles, []string{models.LeadRoleRenter})
		merged.StageRenter = models.LeadStageEnriched
	}
	merged.Type = LegacyType(merged.Roles, merged.Type)

	score := s.scorer.ComputeScores(&merged)
	return &merged, score
}

// buildMeta dựng telemetry từ payload và request, với UTM fallback
// parse từ Referer header khi body không gửi UTM nào
func (s *LeadService) buildMeta(data *LeadCaptureData, req RequestMeta) models.LeadMeta {
	meta := models.LeadMeta{
		IPHash:    utility.HashIP(req.IP, s.hashSecret),
		UserAgent: req.UserAgent,
		Referrer:  data.Referrer,
		UTMs:      data.UTMs,
	}
	if meta.Referrer == "" {
		meta.Referrer = utility.NormalizeStr(req.Referrer, maxLenReferrer)
	}
	if meta.UTMs == (models.UTMParams{}) && req.Referrer != "" {
		meta.UTMs = parseReferrerUTMs(req.Referrer)
	}
	return meta
}

// parseReferrerUTMs đọc các tham số utm_* từ query string của Referer.
// Referer không parse được thì bỏ qua, không phải lỗi.
func parseReferrerUTMs(ref string) models.UTMParams {
	u, err := url.Parse(ref)
	if err != nil {
		return models.UTMParams{}
	}
	q := u.Query()
	return models.UTMParams{
		Source:   utility.NormalizeStr(q.Get("utm_source"), maxLenUTM),
		Medium:   utility.NormalizeStr(q.Get("utm_medium"), maxLenUTM),
		Campaign: utility.NormalizeStr(q.Get("utm_campaign"), maxLenUTM),
		Term:     utility.NormalizeStr(q.Get("utm_term"), maxLenUTM),
		Content:  utility.NormalizeStr(q.Get("utm_content"), maxLenUTM),
	}
}

func setNonEmpty(m bson.M, key, val string) {
	if val != "" {
		m[key] = val
	}
}
