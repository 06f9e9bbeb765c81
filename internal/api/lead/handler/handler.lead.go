package leadhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/Friend-Renter/fr-marketing-api/internal/api/base/handler"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/lead/dto"
	leadsvc "github.com/Friend-Renter/fr-marketing-api/internal/api/lead/service"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/middleware"
	"github.com/Friend-Renter/fr-marketing-api/internal/common"
	"github.com/Friend-Renter/fr-marketing-api/internal/global"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
)

// LeadHandler xử lý các request lead intake
type LeadHandler struct {
	service *leadsvc.LeadService
}

// NewLeadHandler tạo mới LeadHandler
func NewLeadHandler(service *leadsvc.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// requestMeta gom ngữ cảnh request cho pipeline
func requestMeta(c fiber.Ctx) leadsvc.RequestMeta {
	ref := c.Get("Referer")
	if ref == "" {
		ref = c.Get("Referrer")
	}
	return leadsvc.RequestMeta{
		IP:             middleware.ClientIP(c),
		UserAgent:      middleware.UserAgent(c),
		Referrer:       ref,
		IdempotencyKey: c.Get("X-Idempotency-Key"),
	}
}

// HandleQuickCapture xử lý POST /leads — quick capture bước 1.
// Thành công (kể cả soft accept honeypot / duplicate) đều là 201.
func (h *LeadHandler) HandleQuickCapture(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input dto.LeadCaptureInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleError(c, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				nil,
			))
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			basehdl.HandleError(c, common.NewError(
				common.ErrCodeValidationInput,
				"Dữ liệu đầu vào không hợp lệ",
				common.StatusBadRequest,
				err.Error(),
			))
			return nil
		}

		resp, err := h.service.QuickCapture(c.Context(), &input, requestMeta(c))
		if err != nil {
			basehdl.HandleError(c, err)
			return nil
		}

		logger.WithRequest(c).WithFields(map[string]interface{}{
			"lead_id": resp.ID,
			"status":  resp.Status,
		}).Info("Quick capture accepted")
		return basehdl.HandleSuccess(c, common.StatusCreated, resp)
	})
}

// HandleEnrich xử lý PATCH /leads/enrich?email= — merge chi tiết vai trò
func (h *LeadHandler) HandleEnrich(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input dto.LeadEnrichInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleError(c, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON. Chi tiết: %v", err),
				common.StatusBadRequest,
				nil,
			))
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			basehdl.HandleError(c, common.NewError(
				common.ErrCodeValidationInput,
				"Dữ liệu đầu vào không hợp lệ",
				common.StatusBadRequest,
				err.Error(),
			))
			return nil
		}

		email := c.Query("email")
		resp, err := h.service.Enrich(c.Context(), email, &input, requestMeta(c))
		if err != nil {
			basehdl.HandleError(c, err)
			return nil
		}

		logger.WithRequest(c).WithFields(map[string]interface{}{
			"lead_id": resp.ID,
			"status":  resp.Status,
		}).Info("Enrichment accepted")
		return basehdl.HandleSuccess(c, common.StatusOK, resp)
	})
}
