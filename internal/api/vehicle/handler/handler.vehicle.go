package vehhdl

import (
	"regexp"

	"github.com/gofiber/fiber/v3"

	abusesvc "github.com/Friend-Renter/fr-marketing-api/internal/api/abuse/service"
	basehdl "github.com/Friend-Renter/fr-marketing-api/internal/api/base/handler"
	"github.com/Friend-Renter/fr-marketing-api/internal/api/middleware"
	vehsvc "github.com/Friend-Renter/fr-marketing-api/internal/api/vehicle/service"
	"github.com/Friend-Renter/fr-marketing-api/internal/common"
)

var yearRegex = regexp.MustCompile(`^\d{4}$`)

// VehicleHandler xử lý các endpoint taxonomy xe (proxy CarQuery có cache)
type VehicleHandler struct {
	catalog *vehsvc.CatalogService
	limiter *abusesvc.CatalogLimiter
}

// NewVehicleHandler tạo mới VehicleHandler
func NewVehicleHandler(catalog *vehsvc.CatalogService, limiter *abusesvc.CatalogLimiter) *VehicleHandler {
	return &VehicleHandler{catalog: catalog, limiter: limiter}
}

// respond trả về payload catalog kèm cache headers.
// Endpoint nhẹ và đã cache nên cho browser/CDN cache thêm 5 phút.
func respond(c fiber.Ctx, data interface{}, cacheStatus string) error {
	c.Set("Cache-Control", "public, max-age=300")
	c.Set("x-cache", cacheStatus)
	return basehdl.JSONResponse(c, common.StatusOK, data)
}

// checkLimit áp rate limit per-IP. Catalog là fail-open — limiter tự
// fallback sang in-memory khi Redis down, ở đây chỉ cần kết quả bool.
func (h *VehicleHandler) checkLimit(c fiber.Ctx) bool {
	if h.limiter.Allow(c.Context(), middleware.ClientIP(c)) {
		return true
	}
	basehdl.HandleError(c, common.ErrRateLimited)
	return false
}

// HandleYears xử lý GET /vehicles/years
func (h *VehicleHandler) HandleYears(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		if !h.checkLimit(c) {
			return nil
		}
		years, status := h.catalog.Years(c.Context())
		return respond(c, fiber.Map{"years": years}, status)
	})
}

// HandleMakes xử lý GET /vehicles/makes?year=YYYY
func (h *VehicleHandler) HandleMakes(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		if !h.checkLimit(c) {
			return nil
		}
		year := c.Query("year")
		if !yearRegex.MatchString(year) {
			basehdl.HandleError(c, common.NewError(common.ErrCodeValidationInput, "year (YYYY) required", common.StatusBadRequest, nil))
			return nil
		}
		makes, status := h.catalog.Makes(c.Context(), year)
		return respond(c, fiber.Map{"makes": makes}, status)
	})
}

// HandleModels xử lý GET /vehicles/models?year=YYYY&make=Honda
func (h *VehicleHandler) HandleModels(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		if !h.checkLimit(c) {
			return nil
		}
		year := c.Query("year")
		makeName := c.Query("make")
		if !yearRegex.MatchString(year) {
			basehdl.HandleError(c, common.NewError(common.ErrCodeValidationInput, "year (YYYY) required", common.StatusBadRequest, nil))
			return nil
		}
		if makeName == "" {
			basehdl.HandleError(c, common.NewError(common.ErrCodeValidationInput, "make required", common.StatusBadRequest, nil))
			return nil
		}
		models, status := h.catalog.Models(c.Context(), year, makeName)
		return respond(c, fiber.Map{"models": models}, status)
	})
}

// HandleTrims xử lý GET /vehicles/trims?year=YYYY&make=Honda&model=Accord
func (h *VehicleHandler) HandleTrims(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		if !h.checkLimit(c) {
			return nil
		}
		year := c.Query("year")
		makeName := c.Query("make")
		model := c.Query("model")
		if !yearRegex.MatchString(year) {
			basehdl.HandleError(c, common.NewError(common.ErrCodeValidationInput, "year (YYYY) required", common.StatusBadRequest, nil))
			return nil
		}
		if makeName == "" {
			basehdl.HandleError(c, common.NewError(common.ErrCodeValidationInput, "make required", common.StatusBadRequest, nil))
			return nil
		}
		if model == "" {
			basehdl.HandleError(c, common.NewError(common.ErrCodeValidationInput, "model required", common.StatusBadRequest, nil))
			return nil
		}
		trims, status := h.catalog.Trims(c.Context(), year, makeName, model)
		return respond(c, fiber.Map{"trims": trims}, status)
	})
}
