package controllers

import (
	"net/http"

	"github.com/rzbill/bytelog/internal/runtime"
	"github.com/rzbill/bytelog/internal/services/logsvc"
	logpkg "github.com/rzbill/bytelog/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes
// and manages the lifecycle of individual controllers.
type ControllerRegistry struct {
	general *GeneralController
	log     *LogController
}

// NewControllerRegistry creates a new controller registry.
//
// It initializes all controllers with the provided runtime and service.
func NewControllerRegistry(rt *runtime.Runtime, logSvc *logsvc.Service, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt),
		log:     NewLogController(rt, logSvc, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
//
// This method sets up all HTTP endpoints for the bytelog service:
// general endpoints (health) and the log surface (append, fetch,
// stats, chunks, tail).
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.log.RegisterRoutes(mux)
}
