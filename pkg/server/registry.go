package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"ml-task-server/pkg/models"
	"ml-task-server/pkg/schema"
)

// Handler is the opaque task function a route binds to. It receives typed
// inputs and parameters that already passed validation against the declared
// shape. A returned error is a handler fault, not a validation failure.
type Handler func(inputs map[string]models.Input, parameters map[string]interface{}) (models.Response, error)

// TaskSchemaFunc builds the human-facing task schema for a route.
type TaskSchemaFunc func() models.TaskSchema

var ErrDuplicateRoute = errors.New("route already registered")

// Route is one registered task endpoint. Records are created during the
// startup phase and never mutated afterwards.
type Route struct {
	Path       string
	InputShape models.InputShape
	ParamShape models.ParamShape
	Handler    Handler
	TaskSchema TaskSchemaFunc
	ShortTitle string
	Order      *int

	payloadSchema map[string]interface{}
	samplePayload map[string]interface{}
	compiled      *gojsonschema.Schema
}

type RouteOption func(*Route)

func WithTaskSchema(fn TaskSchemaFunc) RouteOption {
	return func(r *Route) { r.TaskSchema = fn }
}

func WithOrder(order int) RouteOption {
	return func(r *Route) {
		o := order
		r.Order = &o
	}
}

func WithShortTitle(title string) RouteOption {
	return func(r *Route) { r.ShortTitle = title }
}

// Registry holds all route records. It follows a build-then-freeze model:
// Add is only called during startup, dispatch only reads.
type Registry struct {
	routes []*Route
	byPath map[string]*Route
}

func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string]*Route)}
}

// Add binds a path to a handler and its declared shape. Parameter keys that
// appear only in the task schema are merged into the parameter shape, along
// with their defaults and ranges, so they participate in key-set exactness
// and sample generation. The derived payload schema is compiled here so a bad
// shape fails registration instead of surfacing per request.
func (reg *Registry) Add(path string, inputs models.InputShape, params models.ParamShape, h Handler, opts ...RouteOption) (*Route, error) {
	path = normalizePath(path)
	if _, exists := reg.byPath[path]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, path)
	}

	r := &Route{
		Path:       path,
		InputShape: inputs,
		Handler:    h,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ParamShape = mergeParamShape(params, r.TaskSchema)

	r.payloadSchema = schema.PayloadSchema(r.InputShape, r.ParamShape)
	compiled, err := schema.Compile(r.payloadSchema)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", path, err)
	}
	r.compiled = compiled
	r.samplePayload = schema.SamplePayload(r.InputShape, r.ParamShape)

	reg.routes = append(reg.routes, r)
	reg.byPath[path] = r
	return r, nil
}

func (reg *Registry) Lookup(path string) (*Route, bool) {
	r, ok := reg.byPath[normalizePath(path)]
	return r, ok
}

// RouteListing is one entry of the /api/routes directory. Routes without a
// task schema omit the task_schema and short_title fields; routes without an
// explicit order omit order.
type RouteListing struct {
	RunTask       string  `json:"run_task"`
	PayloadSchema string  `json:"payload_schema"`
	SamplePayload string  `json:"sample_payload"`
	TaskSchema    string  `json:"task_schema,omitempty"`
	ShortTitle    *string `json:"short_title,omitempty"`
	Order         *int    `json:"order,omitempty"`
}

// Listing returns the directory entries. Insertion order is preserved;
// entries carrying an explicit order are rearranged among themselves by that
// value while the remaining entries keep their positions.
func (reg *Registry) Listing() []RouteListing {
	out := make([]RouteListing, 0, len(reg.routes))
	for _, r := range reg.ordered() {
		entry := RouteListing{
			RunTask:       r.Path,
			PayloadSchema: r.Path + "/payload_schema",
			SamplePayload: r.Path + "/sample_payload",
			Order:         r.Order,
		}
		if r.TaskSchema != nil {
			entry.TaskSchema = r.Path + "/task_schema"
			title := r.ShortTitle
			entry.ShortTitle = &title
		}
		out = append(out, entry)
	}
	return out
}

func (reg *Registry) ordered() []*Route {
	out := make([]*Route, len(reg.routes))
	copy(out, reg.routes)

	var slots []int
	var explicit []*Route
	for i, r := range out {
		if r.Order != nil {
			slots = append(slots, i)
			explicit = append(explicit, r)
		}
	}
	sort.SliceStable(explicit, func(a, b int) bool { return *explicit[a].Order < *explicit[b].Order })
	for j, i := range slots {
		out[i] = explicit[j]
	}
	return out
}

func mergeParamShape(declared models.ParamShape, ts TaskSchemaFunc) models.ParamShape {
	merged := make(models.ParamShape, len(declared))
	for k, v := range declared {
		merged[k] = v
	}
	if ts == nil {
		return merged
	}
	for _, p := range ts().Parameters {
		spec := p.Value.Spec()
		existing, ok := merged[p.Key]
		if !ok {
			merged[p.Key] = spec
			continue
		}
		if existing.Default == nil {
			existing.Default = spec.Default
		}
		if existing.Min == nil {
			existing.Min = spec.Min
		}
		if existing.Max == nil {
			existing.Max = spec.Max
		}
		if existing.Options == nil {
			existing.Options = spec.Options
		}
		merged[p.Key] = existing
	}
	return merged
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(path, "/")
}
