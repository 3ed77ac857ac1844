// Package api exposes the runtime over HTTP: orchestration, ingestion,
// compression, critique and the per-session gut stream.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jesforart/traceos-sub000/pkg/agent"
	"github.com/jesforart/traceos-sub000/pkg/compress"
	"github.com/jesforart/traceos-sub000/pkg/database"
	"github.com/jesforart/traceos-sub000/pkg/eventlog"
	"github.com/jesforart/traceos-sub000/pkg/gut"
	"github.com/jesforart/traceos-sub000/pkg/ingest"
	"github.com/jesforart/traceos-sub000/pkg/oracle"
	"github.com/jesforart/traceos-sub000/pkg/services"
	"github.com/jesforart/traceos-sub000/pkg/telemetry"
)

// Server holds the wired runtime. Everything is constructed once at startup
// and passed in; the server owns no background state of its own.
type Server struct {
	db         *database.Client
	registry   *agent.Registry
	dispatcher *agent.Dispatcher
	contracts  *services.ContractService
	blocks     *services.BlockService
	cleanup    *services.CleanupService
	pipeline   *compress.Pipeline
	engine     *ingest.Engine
	guts       *gut.Pool
	oracle     oracle.Oracle
	events     *eventlog.Client
	telemetry  *telemetry.WriterPool
}

// Deps collects the server's constructor arguments.
type Deps struct {
	DB         *database.Client
	Registry   *agent.Registry
	Dispatcher *agent.Dispatcher
	Contracts  *services.ContractService
	Blocks     *services.BlockService
	Cleanup    *services.CleanupService
	Pipeline   *compress.Pipeline
	Engine     *ingest.Engine
	Guts       *gut.Pool
	Oracle     oracle.Oracle
	Events     *eventlog.Client
	Telemetry  *telemetry.WriterPool
}

// NewServer creates the API server.
func NewServer(deps Deps) *Server {
	return &Server{
		db:         deps.DB,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		contracts:  deps.Contracts,
		blocks:     deps.Blocks,
		cleanup:    deps.Cleanup,
		pipeline:   deps.Pipeline,
		engine:     deps.Engine,
		guts:       deps.Guts,
		oracle:     deps.Oracle,
		events:     deps.Events,
		telemetry:  deps.Telemetry,
	}
}

// Routes builds the gin engine with every route mounted under /v1.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Unversioned probe for load balancers; same handler as /v1/health.
	r.GET("/health", s.Health)

	v1 := r.Group("/v1")
	{
		v1.GET("/health", s.Health)
		v1.GET("/status", s.Status)

		v1.GET("/agents", s.ListAgents)
		v1.POST("/agents/register", s.RegisterAgent)

		v1.POST("/orchestrate", s.Orchestrate)
		v1.GET("/contracts", s.ListContracts)

		v1.POST("/ingest", s.Ingest)
		v1.POST("/compress", s.Compress)
		v1.POST("/critique", s.Critique)
		v1.POST("/critique-and-ingest", s.CritiqueAndIngest)

		v1.GET("/gut/state", s.GutState)
		v1.POST("/gut/clear", s.GutClear)
		v1.GET("/gut/ws", s.GutStream)

		v1.POST("/sessions/:id/purge", s.PurgeSession)
	}
	return r
}
