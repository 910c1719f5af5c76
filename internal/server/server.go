package server

import (
	"bytes"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/graphloom/loom/internal/config"
	"github.com/graphloom/loom/internal/core/conflict"
	"github.com/graphloom/loom/internal/core/fusion"
	"github.com/graphloom/loom/internal/core/graph"
	"github.com/graphloom/loom/internal/core/model"
	"github.com/graphloom/loom/internal/core/ontology"
	"github.com/graphloom/loom/internal/driver"
)

type Server struct {
	Store          *graph.Store
	EntityEngine   *fusion.EntityEngine
	RelationEngine *fusion.RelationEngine
	Resolver       *conflict.Resolver
	Driver         driver.GraphDriver
}

func NewServer(cfg *config.Config, d driver.GraphDriver) *Server {
	entityEngine := fusion.NewEntityEngine()
	if cfg.Fusion.EntityThreshold > 0 {
		entityEngine.Threshold = cfg.Fusion.EntityThreshold
	}
	if cfg.Fusion.Grouping != "" {
		entityEngine.Grouping = fusion.Grouping(cfg.Fusion.Grouping)
	}

	relationEngine := fusion.NewRelationEngine()
	if cfg.Fusion.RelationThreshold > 0 {
		relationEngine.Threshold = cfg.Fusion.RelationThreshold
	}
	if cfg.Fusion.Grouping != "" {
		relationEngine.Grouping = fusion.Grouping(cfg.Fusion.Grouping)
	}
	if cfg.Fusion.ConfidenceStrategy != "" {
		relationEngine.ConfidenceStrategy = fusion.ConfidenceStrategy(cfg.Fusion.ConfidenceStrategy)
	}
	if cfg.Fusion.PropertyStrategy != "" {
		relationEngine.PropertyStrategy = fusion.PropertyStrategy(cfg.Fusion.PropertyStrategy)
	}

	resolver := conflict.NewResolver()
	for kind, strategy := range cfg.Conflict.Strategies {
		resolver.Overrides[conflict.Kind(kind)] = strategy
	}

	return &Server{
		Store:          graph.NewStore(ontology.Default()),
		EntityEngine:   entityEngine,
		RelationEngine: relationEngine,
		Resolver:       resolver,
		Driver:         d,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)

	r.POST("/ingest", s.Ingest)
	r.POST("/fuse/entities", s.FuseEntities)
	r.POST("/fuse/relations", s.FuseRelations)
	r.POST("/conflicts/detect", s.DetectConflicts)
	r.POST("/conflicts/resolve", s.ResolveConflicts)

	r.GET("/entities/:id", s.GetEntity)
	r.GET("/entities/:id/neighbors", s.GetNeighbors)
	r.GET("/paths", s.GetPaths)
	r.POST("/subgraph", s.QuerySubgraph)
	r.POST("/merge", s.MergeGraph)

	r.GET("/validate", s.Validate)
	r.GET("/statistics", s.GetStatistics)
	r.GET("/export/json", s.ExportJSON)
	r.GET("/export/entities.csv", s.ExportEntitiesCSV)
	r.GET("/export/relations.csv", s.ExportRelationsCSV)
	r.POST("/import", s.ImportJSON)
	r.POST("/publish", s.Publish)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type IngestRequest struct {
	Entities  []model.Entity   `json:"entities"`
	Relations []model.Relation `json:"relations"`
}

func (s *Server) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report := s.Store.Ingest(req.Entities, req.Relations, s.EntityEngine, s.RelationEngine)
	c.JSON(http.StatusOK, gin.H{"report": report})
}

type FuseEntitiesRequest struct {
	Entities []model.Entity `json:"entities"`
}

func (s *Server) FuseEntities(c *gin.Context) {
	var req FuseEntitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	results := s.EntityEngine.BatchFuse(req.Entities)
	c.JSON(http.StatusOK, gin.H{
		"results":    results,
		"statistics": s.EntityEngine.Statistics(results),
	})
}

type FuseRelationsRequest struct {
	Relations []model.Relation `json:"relations"`
}

func (s *Server) FuseRelations(c *gin.Context) {
	var req FuseRelationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	results := s.RelationEngine.BatchFuse(req.Relations)
	c.JSON(http.StatusOK, gin.H{
		"results":    results,
		"statistics": s.RelationEngine.Statistics(results),
	})
}

func (s *Server) DetectConflicts(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	conflicts := s.Resolver.DetectEntityConflicts(req.Entities)
	conflicts = append(conflicts, s.Resolver.DetectRelationConflicts(req.Relations)...)
	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts})
}

type ResolveRequest struct {
	Conflicts []conflict.Conflict `json:"conflicts"`
}

func (s *Server) ResolveConflicts(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resolved := s.Resolver.BatchResolve(req.Conflicts)
	c.JSON(http.StatusOK, gin.H{
		"resolved":   resolved,
		"statistics": conflict.Summarize(resolved),
	})
}

func (s *Server) GetEntity(c *gin.Context) {
	e, ok := s.Store.Entity(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) GetNeighbors(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.Store.Entity(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	ids := s.Store.Neighbors(id, c.Query("type"))
	c.JSON(http.StatusOK, gin.H{"neighbors": s.Store.EntitiesOf(ids)})
}

func (s *Server) GetPaths(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end are required"})
		return
	}

	maxDepth := 3
	if v := c.Query("max_depth"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_depth must be a positive integer"})
			return
		}
		maxDepth = parsed
	}

	paths := s.Store.FindPaths(start, end, maxDepth)
	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

type SubgraphRequest struct {
	SeedIDs []string `json:"seed_ids"`
	Depth   int      `json:"depth"`
}

func (s *Server) QuerySubgraph(c *gin.Context) {
	var req SubgraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sub := s.Store.Subgraph(req.SeedIDs, req.Depth)
	c.JSON(http.StatusOK, gin.H{
		"entities":  sub.Entities(),
		"relations": sub.Relations(),
	})
}

func (s *Server) MergeGraph(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	other := graph.NewStore(s.Store.Ontology)
	for _, e := range req.Entities {
		other.AddEntity(e)
	}
	skipped := 0
	for _, r := range req.Relations {
		if err := other.AddRelation(r); err != nil {
			log.Printf("merge: skipping relation %s: %v", r.ID, err)
			skipped++
		}
	}

	report := s.Store.Merge(other, s.EntityEngine, s.RelationEngine)
	c.JSON(http.StatusOK, gin.H{"report": report, "relations_skipped": skipped})
}

func (s *Server) Validate(c *gin.Context) {
	issues := s.Store.Validate()
	if issues == nil {
		issues = []graph.Issue{}
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

func (s *Server) GetStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Store.Statistics())
}

func (s *Server) ExportJSON(c *gin.Context) {
	data, err := s.Store.ExportJSON()
	if err != nil {
		log.Printf("Failed to export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) ExportEntitiesCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.Store.ExportEntitiesCSV(&buf); err != nil {
		log.Printf("Failed to export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export"})
		return
	}
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (s *Server) ExportRelationsCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.Store.ExportRelationsCSV(&buf); err != nil {
		log.Printf("Failed to export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export"})
		return
	}
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (s *Server) ImportJSON(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report, err := s.Store.LoadJSON(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (s *Server) Publish(c *gin.Context) {
	if s.Driver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No graph database configured"})
		return
	}

	report, err := driver.Publish(c.Request.Context(), s.Driver, s.Store)
	if err != nil {
		log.Printf("Failed to publish: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
