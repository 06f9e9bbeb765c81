package router

import (
	"github.com/gofiber/fiber/v3"

	basehdl "github.com/Friend-Renter/fr-marketing-api/internal/api/base/handler"
	leadhdl "github.com/Friend-Renter/fr-marketing-api/internal/api/lead/handler"
	vehhdl "github.com/Friend-Renter/fr-marketing-api/internal/api/vehicle/handler"
)

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo mới một instance của RoutePrefix với các giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// Router quản lý việc định tuyến cho API
type Router struct {
	app     *fiber.App
	lead    *leadhdl.LeadHandler
	vehicle *vehhdl.VehicleHandler
	system  *basehdl.SystemHandler
}

// NewRouter tạo mới một instance của Router
func NewRouter(app *fiber.App, lead *leadhdl.LeadHandler, vehicle *vehhdl.VehicleHandler, system *basehdl.SystemHandler) *Router {
	return &Router{
		app:     app,
		lead:    lead,
		vehicle: vehicle,
		system:  system,
	}
}

// SetupRoutes đăng ký tất cả routes của API dưới /api/v1
func (r *Router) SetupRoutes() {
	prefix := NewRoutePrefix()
	v1 := r.app.Group(prefix.V1)

	// Lead intake
	leads := v1.Group("/leads")
	leads.Post("/", r.lead.HandleQuickCapture)
	leads.Patch("/enrich", r.lead.HandleEnrich)

	// Vehicle taxonomy (proxy CarQuery có cache)
	vehicles := v1.Group("/vehicles")
	vehicles.Get("/years", r.vehicle.HandleYears)
	vehicles.Get("/makes", r.vehicle.HandleMakes)
	vehicles.Get("/models", r.vehicle.HandleModels)
	vehicles.Get("/trims", r.vehicle.HandleTrims)

	// System — không auth, không rate limit
	system := v1.Group("/system")
	system.Get("/health", r.system.HandleHealthCheck)
}
