package main

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"hublocator/build"
	"hublocator/config"
	"hublocator/graphmodel"
	"hublocator/hublerr"
	"hublocator/provider"
	"hublocator/query"
)

// buildRun tracks one in-flight or completed build, polled via
// GET /v1/build/{id} since a full eight-stage run can run far longer
// than is reasonable to hold an HTTP request open for.
type buildRun struct {
	Status   string `json:"status"`
	Stage    string `json:"stage,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Warnings int    `json:"warnings,omitempty"`
	HubCount int    `json:"hub_count,omitempty"`
}

// server holds everything the HTTP handlers need: the shared provider
// client, the build-run registry, and the most recently completed
// graph the query engine runs against.
type server struct {
	cfg    config.Config
	client *provider.Client
	cache  *provider.Cache

	runsMu sync.Mutex
	runs   map[string]*buildRun

	graphMu sync.RWMutex
	graph   *graphmodel.Graph
}

func newServer(cfg config.Config, client *provider.Client, cache *provider.Cache) *server {
	return &server{
		cfg:    cfg,
		client: client,
		cache:  cache,
		runs:   map[string]*buildRun{},
	}
}

func (s *server) setRun(id string, r *buildRun) {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	s.runs[id] = r
}

func (s *server) getRun(id string) (*buildRun, bool) {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	r, ok := s.runs[id]
	return r, ok
}

func (s *server) setGraph(g *graphmodel.Graph) {
	s.graphMu.Lock()
	defer s.graphMu.Unlock()
	s.graph = g
}

func (s *server) currentGraph() *graphmodel.Graph {
	s.graphMu.RLock()
	defer s.graphMu.RUnlock()
	return s.graph
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleBuild kicks off stages 1-8 in the background and returns
// immediately with a run ID, per spec.md §6's HTTP surface.
func (s *server) handleBuild(c *gin.Context) {
	runID := uuid.New().String()
	s.setRun(runID, &buildRun{Status: "running"})

	go func() {
		result, err := build.Run(context.Background(), s.cfg, s.client, s.cache, build.DefaultLines)
		if err != nil {
			stage := "unknown"
			if hublerr.KindOf(err) == hublerr.ValidationFailure {
				stage = "validate"
			}
			s.setRun(runID, &buildRun{Status: "failed", Stage: stage, Reason: err.Error()})
			return
		}

		if err := graphmodel.WriteGraph(result.Graph, s.cfg.GraphOutputDir+"/final_graph.json"); err != nil {
			s.setRun(runID, &buildRun{Status: "failed", Stage: "write", Reason: err.Error()})
			return
		}

		s.setGraph(result.Graph)
		s.setRun(runID, &buildRun{
			Status:   "completed",
			Warnings: len(result.Warnings),
			HubCount: result.Graph.HubCount(),
		})
	}()

	c.JSON(http.StatusAccepted, gin.H{"run_id": runID, "status": "running"})
}

func (s *server) handleBuildStatus(c *gin.Context) {
	id := c.Param("id")
	run, ok := s.getRun(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown build run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// queryRequest mirrors spec.md §4.12's input shape: fuzzy name
// resolution into start_hub/start_station_id already happened upstream
// of this module.
type queryRequest struct {
	Users []struct {
		StartHub       string  `json:"start_hub" binding:"required"`
		WalkMinutes    float64 `json:"walk_minutes"`
		StartStationID string  `json:"start_station_id"`
	} `json:"users" binding:"required,min=1"`
}

func (s *server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g := s.currentGraph()
	if g == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no completed graph available, run POST /v1/build first"})
		return
	}

	users := make([]query.UserEntry, 0, len(req.Users))
	for _, u := range req.Users {
		users = append(users, query.UserEntry{
			StartHub:       u.StartHub,
			WalkMinutes:    u.WalkMinutes,
			StartStationID: u.StartStationID,
		})
	}

	qcfg := query.Config{
		ChangePenaltyMinutes: s.cfg.ChangePenaltyMinutes,
		EllipseExpansion:     s.cfg.EllipseExpansion,
		HullBufferFraction:   s.cfg.HullBufferFraction,
		CoverageFraction:     s.cfg.CoverageFraction,
		TopKRefined:          s.cfg.TopKRefined,
		AlternativesReturned: s.cfg.AlternativesReturned,
		CandidateConcurrency: s.cfg.Concurrency.Journey,
		JourneyConcurrency:   s.cfg.Concurrency.Journey,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := query.Run(ctx, g, s.client, users, qcfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if result.Best == nil {
		c.JSON(http.StatusOK, gin.H{"status": "no_viable_candidate"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func main() {
	if err := godotenv.Load(); err != nil {
		gin.DefaultWriter.Write([]byte("no .env file found, using default environment variables\n"))
	}

	cfg, err := config.Load(os.Getenv("HUBLOCATOR_CONFIG_PATH"))
	if err != nil {
		panic(err)
	}

	token, err := config.APIToken()
	if err != nil {
		panic(err)
	}

	cache, err := provider.NewCache(cfg.CacheDir, 1024)
	if err != nil {
		panic(err)
	}
	client := provider.NewClient(cfg, token, cache)
	defer client.Close()

	srv := newServer(cfg, client, cache)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"*"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", srv.handleHealth)
	r.POST("/v1/build", srv.handleBuild)
	r.GET("/v1/build/:id", srv.handleBuildStatus)
	r.POST("/v1/query", srv.handleQuery)

	if err := r.Run(":8080"); err != nil {
		panic(err)
	}
}
