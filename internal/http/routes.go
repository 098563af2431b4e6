package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/backend"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/listing"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/navigation"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/services"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/storage"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/workflow"
)

const (
	msgInterviewsFailed = "Falha ao carregar entrevistas."
	msgVisitsFailed     = "Falha ao carregar visitas. Verifique se a aba 'Visitas' existe na sua planilha."
)

type API struct {
	logger   *slog.Logger
	store    *storage.Store
	catalog  domain.Catalog
	backend  *backend.Client
	workflow *workflow.Orchestrator
	pdf      *services.PDFService
	router   *navigation.Router

	runs sync.WaitGroup
}

type apiDeps struct {
	logger   *slog.Logger
	store    *storage.Store
	catalog  domain.Catalog
	backend  *backend.Client
	workflow *workflow.Orchestrator
	pdf      *services.PDFService
	router   *navigation.Router
}

func NewAPI(deps apiDeps) *API {
	return &API{
		logger:   deps.logger,
		store:    deps.store,
		catalog:  deps.catalog,
		backend:  deps.backend,
		workflow: deps.workflow,
		pdf:      deps.pdf,
		router:   deps.router,
	}
}

// Wait blocks until every background generation has finished.
func (a *API) Wait() {
	a.runs.Wait()
}

func registerRoutes(r *gin.Engine, api *API, reg *prometheus.Registry) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)
		apiGroup.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

		apiGroup.GET("/navigation", api.handleNavigation)
		apiGroup.GET("/documents", api.handleListDocuments)

		apiGroup.POST("/intakes", api.handleCreateIntake)
		apiGroup.GET("/intakes/:id", api.handleGetIntake)
		apiGroup.PATCH("/intakes/:id", api.handlePatchIntake)
		apiGroup.DELETE("/intakes/:id", api.handleDeleteIntake)
		apiGroup.POST("/intakes/:id/reset", api.handleResetIntake)

		apiGroup.POST("/intakes/:id/family", api.handleAddFamilyMember)
		apiGroup.PATCH("/intakes/:id/family/:index", api.handleUpdateFamilyMember)
		apiGroup.DELETE("/intakes/:id/family/:index", api.handleRemoveFamilyMember)

		apiGroup.PUT("/intakes/:id/documents", api.handleSelectDocuments)
		apiGroup.POST("/intakes/:id/generate", api.handleGenerate)
		apiGroup.GET("/intakes/:id/progress", api.handleProgress)
		apiGroup.GET("/intakes/:id/ficha.pdf", api.handleFicha)

		apiGroup.GET("/interviews", api.handleListInterviews)
		apiGroup.GET("/visits", api.handleListVisits)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "backendConfigured": a.backend.Configured()})
}

func (a *API) handleNavigation(c *gin.Context) {
	state := a.router.Resolve(c.Query("fragment"))
	body := gin.H{"state": state}
	if state.Page == navigation.PageHome {
		body["quickActions"] = navigation.QuickActions()
	}
	c.JSON(http.StatusOK, body)
}

func (a *API) handleListDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, a.catalog.All())
}

type interviewView struct {
	Item          domain.InterviewItem `json:"item"`
	Badge         string               `json:"badge"`
	DataFormatada string               `json:"dataFormatada"`
}

func (a *API) handleListInterviews(c *gin.Context) {
	items, err := a.backend.ListInterviews(c.Request.Context())
	if err != nil {
		respondBackendError(c, err, msgInterviewsFailed)
		return
	}

	listing.SortInterviews(items)
	filter := listing.InterviewFilter{
		Search: c.Query("search"),
		Area:   c.Query("area"),
	}
	filtered := listing.FilterInterviews(items, filter)

	views := make([]interviewView, 0, len(filtered))
	for _, item := range filtered {
		views = append(views, interviewView{
			Item:          item,
			Badge:         listing.AreaBadge(item.AreaJuridica.String()),
			DataFormatada: listing.FormatDate(item.DataCadastro.String()),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": views,
		"total": len(items),
		"areas": listing.Areas(items),
	})
}

func (a *API) handleListVisits(c *gin.Context) {
	visits, err := a.backend.ListVisits(c.Request.Context())
	if err != nil {
		respondBackendError(c, err, msgVisitsFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": listing.GroupVisits(visits),
		"stats":  listing.Stats(visits),
	})
}

// respondBackendError shows the backend message verbatim, or fallback when
// the backend failed without one.
func respondBackendError(c *gin.Context, err error, fallback string) {
	status := http.StatusBadGateway
	if backend.KindOf(err) == backend.KindConfig {
		status = http.StatusServiceUnavailable
	}

	message := strings.TrimSpace(err.Error())
	if message == "" || !backend.Explained(err) {
		message = fallback
	}
	respondMessage(c, status, message)
}

func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondMessage(c, http.StatusNotFound, storage.ErrNotFound.Error())
	case errors.Is(err, storage.ErrRunInProgress):
		respondError(c, http.StatusConflict, storage.ErrRunInProgress)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
