// Package server implements the schema-driven task router: route
// registration, request validation and dispatch, and the introspection
// endpoints derived from each route's declared shape.
package server

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ml-task-server/internal/common/logger"
	"ml-task-server/internal/common/metrics"
	"ml-task-server/pkg/models"
)

const envelopeErrorMessage = "Request body must be a JSON object with 'inputs' and 'parameters' keys."

type Server struct {
	engine   *gin.Engine
	registry *Registry
	log      logger.Logger
}

func New(log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:   engine,
		registry: NewRegistry(),
		log:      log,
	}
	engine.Use(s.requestID())
	engine.GET("/api/routes", s.listRoutes)
	return s
}

// Engine exposes the underlying router so callers can mount extra handlers
// (metrics, health) or serve it through their own http.Server.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Register binds a task route and mounts its POST endpoint plus the derived
// read-only introspection endpoints. Must be called before Run; a duplicate
// path or an invalid shape is a startup error.
func (s *Server) Register(path string, inputs models.InputShape, params models.ParamShape, h Handler, opts ...RouteOption) error {
	route, err := s.registry.Add(path, inputs, params, h, opts...)
	if err != nil {
		return err
	}

	s.engine.POST(route.Path, s.dispatch(route))
	s.engine.GET(route.Path+"/payload_schema", func(c *gin.Context) {
		c.JSON(http.StatusOK, route.payloadSchema)
	})
	s.engine.GET(route.Path+"/sample_payload", func(c *gin.Context) {
		c.JSON(http.StatusOK, route.samplePayload)
	})
	if route.TaskSchema != nil {
		s.engine.GET(route.Path+"/task_schema", func(c *gin.Context) {
			c.JSON(http.StatusOK, route.TaskSchema())
		})
	}

	s.log.Info("route registered", map[string]interface{}{
		"path":       route.Path,
		"inputs":     len(route.InputShape),
		"parameters": len(route.ParamShape),
	})
	return nil
}

// MustRegister is Register for static startup wiring; it panics on error.
func (s *Server) MustRegister(path string, inputs models.InputShape, params models.ParamShape, h Handler, opts ...RouteOption) {
	if err := s.Register(path, inputs, params, h, opts...); err != nil {
		panic(err)
	}
}

func (s *Server) Run(addr string) error {
	s.log.Info("server listening", map[string]interface{}{"addr": addr})
	return s.engine.Run(addr)
}

func (s *Server) listRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, s.registry.Listing())
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) dispatch(route *Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		status := s.handleTask(c, route)
		metrics.TaskRequestsTotal.WithLabelValues(route.Path, strconv.Itoa(status)).Inc()
		metrics.TaskRequestDuration.WithLabelValues(route.Path).Observe(time.Since(start).Seconds())
	}
}

// handleTask runs the validation pipeline and, on success, the handler.
// Every validation failure is recovered into a structured 400 body; only
// handler faults map to 500.
func (s *Server) handleTask(c *gin.Context, route *Route) int {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		return s.rejectEnvelope(c, route)
	}
	rawInputs, inputsOk := body["inputs"].(map[string]interface{})
	rawParams, paramsOk := body["parameters"].(map[string]interface{})
	if !inputsOk || !paramsOk || len(body) != 2 {
		return s.rejectEnvelope(c, route)
	}

	if msg, ok := matchKeySets("input", inputShapeKeys(route.InputShape), mapKeys(rawInputs)); !ok {
		return s.reject(c, route, "keys_mismatch", msg)
	}
	if msg, ok := matchKeySets("parameter", paramShapeKeys(route.ParamShape), mapKeys(rawParams)); !ok {
		return s.reject(c, route, "keys_mismatch", msg)
	}

	typedInputs := make(map[string]models.Input, len(route.InputShape))
	for _, key := range inputShapeKeys(route.InputShape) {
		in, fe := models.DecodeInput(rawInputs[key], route.InputShape[key], []interface{}{key})
		if fe != nil {
			return s.reject(c, route, "field", []models.FieldError{*fe})
		}
		typedInputs[key] = in
	}

	typedParams := make(map[string]interface{}, len(route.ParamShape))
	for _, key := range paramShapeKeys(route.ParamShape) {
		v, fe := models.DecodeParameter(rawParams[key], route.ParamShape[key], key)
		if fe != nil {
			return s.reject(c, route, "field", []models.FieldError{*fe})
		}
		typedParams[key] = v
	}

	resp, err := route.Handler(typedInputs, typedParams)
	if err != nil {
		s.log.WithError(err).Error("handler failed", map[string]interface{}{
			"path":       route.Path,
			"request_id": c.GetString("request_id"),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"status": "SERVER_ERROR"})
		return http.StatusInternalServerError
	}

	c.JSON(http.StatusOK, resp)
	return http.StatusOK
}

func (s *Server) rejectEnvelope(c *gin.Context, route *Route) int {
	return s.reject(c, route, "envelope", envelopeErrorMessage)
}

func (s *Server) reject(c *gin.Context, route *Route, kind string, errBody interface{}) int {
	metrics.ValidationFailuresTotal.WithLabelValues(route.Path, kind).Inc()
	s.log.Warn("request rejected", map[string]interface{}{
		"path":       route.Path,
		"kind":       kind,
		"request_id": c.GetString("request_id"),
	})
	c.JSON(http.StatusBadRequest, models.ValidationFailure{
		Status: models.StatusValidationError,
		Error:  errBody,
	})
	return http.StatusBadRequest
}

// matchKeySets enforces exactness between declared and received keys. The
// message names both sets, whichever side holds the extras.
func matchKeySets(schemaName string, declared, received []string) (string, bool) {
	if equalStringSlices(declared, received) {
		return "", true
	}
	msg := fmt.Sprintf("Keys mismatch. The %s schema has %v, request has %v.", schemaName, declared, received)
	return msg, false
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func inputShapeKeys(shape models.InputShape) []string {
	keys := make([]string, 0, len(shape))
	for k := range shape {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func paramShapeKeys(shape models.ParamShape) []string {
	keys := make([]string, 0, len(shape))
	for k := range shape {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
