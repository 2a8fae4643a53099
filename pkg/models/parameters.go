package models

// ParamType is the primitive kind a parameter value must have on the wire.
type ParamType string

const (
	ParamTypeFloat  ParamType = "float"
	ParamTypeInt    ParamType = "int"
	ParamTypeString ParamType = "string"
	ParamTypeBool   ParamType = "bool"
)

// ParamSpec describes one declared parameter: its primitive type plus the
// optional metadata (default, range, options) used for schema derivation and
// sample generation. Default is nil when no default is declared.
type ParamSpec struct {
	Type    ParamType
	Default interface{}
	Min     *float64
	Max     *float64
	Options []string
}

// ParamShape maps route-declared parameter keys to their spec.
type ParamShape map[string]ParamSpec

// ParameterType discriminates the task-schema widget descriptors.
type ParameterType string

const (
	ParameterTypeRangedFloat ParameterType = "ranged_float"
	ParameterTypeRangedInt   ParameterType = "ranged_int"
	ParameterTypeEnum        ParameterType = "enum"
	ParameterTypeText        ParameterType = "text"
	ParameterTypeBool        ParameterType = "bool"
)

// ParameterDescriptor is a human-facing widget description for one parameter.
// Spec() exposes the primitive shape the widget implies, so task-schema
// parameters participate in validation and sampling like shape-declared ones.
type ParameterDescriptor interface {
	ParameterType() ParameterType
	Spec() ParamSpec
}

type FloatRangeDescriptor struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type IntRangeDescriptor struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type RangedFloatDescriptor struct {
	Type    ParameterType        `json:"parameter_type"`
	Range   FloatRangeDescriptor `json:"range"`
	Default float64              `json:"default"`
}

func NewRangedFloatDescriptor(min, max, def float64) RangedFloatDescriptor {
	return RangedFloatDescriptor{
		Type:    ParameterTypeRangedFloat,
		Range:   FloatRangeDescriptor{Min: min, Max: max},
		Default: def,
	}
}

func (d RangedFloatDescriptor) ParameterType() ParameterType { return ParameterTypeRangedFloat }

func (d RangedFloatDescriptor) Spec() ParamSpec {
	min, max := d.Range.Min, d.Range.Max
	return ParamSpec{Type: ParamTypeFloat, Default: d.Default, Min: &min, Max: &max}
}

type RangedIntDescriptor struct {
	Type    ParameterType      `json:"parameter_type"`
	Range   IntRangeDescriptor `json:"range"`
	Default int                `json:"default"`
}

func NewRangedIntDescriptor(min, max, def int) RangedIntDescriptor {
	return RangedIntDescriptor{
		Type:    ParameterTypeRangedInt,
		Range:   IntRangeDescriptor{Min: min, Max: max},
		Default: def,
	}
}

func (d RangedIntDescriptor) ParameterType() ParameterType { return ParameterTypeRangedInt }

func (d RangedIntDescriptor) Spec() ParamSpec {
	min, max := float64(d.Range.Min), float64(d.Range.Max)
	return ParamSpec{Type: ParamTypeInt, Default: d.Default, Min: &min, Max: &max}
}

type EnumDescriptor struct {
	Type    ParameterType `json:"parameter_type"`
	Options []string      `json:"options"`
	Default string        `json:"default"`
}

func NewEnumDescriptor(options []string, def string) EnumDescriptor {
	return EnumDescriptor{Type: ParameterTypeEnum, Options: options, Default: def}
}

func (d EnumDescriptor) ParameterType() ParameterType { return ParameterTypeEnum }

func (d EnumDescriptor) Spec() ParamSpec {
	return ParamSpec{Type: ParamTypeString, Default: d.Default, Options: d.Options}
}

type TextDescriptor struct {
	Type    ParameterType `json:"parameter_type"`
	Default string        `json:"default"`
}

func NewTextDescriptor(def string) TextDescriptor {
	return TextDescriptor{Type: ParameterTypeText, Default: def}
}

func (d TextDescriptor) ParameterType() ParameterType { return ParameterTypeText }

func (d TextDescriptor) Spec() ParamSpec {
	return ParamSpec{Type: ParamTypeString, Default: d.Default}
}

type BoolDescriptor struct {
	Type    ParameterType `json:"parameter_type"`
	Default bool          `json:"default"`
}

func NewBoolDescriptor(def bool) BoolDescriptor {
	return BoolDescriptor{Type: ParameterTypeBool, Default: def}
}

func (d BoolDescriptor) ParameterType() ParameterType { return ParameterTypeBool }

func (d BoolDescriptor) Spec() ParamSpec {
	return ParamSpec{Type: ParamTypeBool, Default: d.Default}
}

// InputSchema is the human-facing description of one route input.
type InputSchema struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Subtitle  string    `json:"subtitle"`
	InputType InputType `json:"input_type"`
}

// ParameterSchema pairs a parameter key with its widget descriptor.
type ParameterSchema struct {
	Key      string              `json:"key"`
	Label    string              `json:"label"`
	Subtitle string              `json:"subtitle"`
	Value    ParameterDescriptor `json:"value"`
}

// TaskSchema is the human-facing description of a route, distinct from the
// machine structural schema served at payload_schema.
type TaskSchema struct {
	Inputs     []InputSchema     `json:"inputs"`
	Parameters []ParameterSchema `json:"parameters"`
}
