// Package schema derives machine-readable payload schemas and deterministic
// sample payloads from a route's declared shape.
package schema

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"ml-task-server/pkg/models"
)

// PayloadSchema derives the structural schema of the {inputs, parameters}
// envelope for a declared shape. Nested variant types are emitted once under
// $defs and referenced from the per-key properties.
func PayloadSchema(inputs models.InputShape, params models.ParamShape) map[string]interface{} {
	defs := map[string]interface{}{}

	inputProps := map[string]interface{}{}
	for key, typ := range inputs {
		inputProps[key] = map[string]interface{}{
			"$ref": "#/$defs/" + defName(typ, defs),
		}
	}

	paramProps := map[string]interface{}{}
	for key, spec := range params {
		paramProps[key] = paramProperty(spec)
	}

	doc := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"inputs":     objectSchema(inputProps, keysOf(inputs)),
			"parameters": objectSchema(paramProps, paramKeysOf(params)),
		},
		"required":             []string{"inputs", "parameters"},
		"additionalProperties": false,
	}
	if len(defs) > 0 {
		doc["$defs"] = defs
	}
	return doc
}

// SamplePayload builds one representative instance of the declared shape.
// Generation is deterministic: file fields get fixed placeholder paths, text
// fields fixed placeholder strings, and parameters their declared default or
// the zero placeholder of their primitive type.
func SamplePayload(inputs models.InputShape, params models.ParamShape) map[string]interface{} {
	sampleInputs := map[string]interface{}{}
	for key, typ := range inputs {
		sampleInputs[key] = sampleInput(typ)
	}
	sampleParams := map[string]interface{}{}
	for key, spec := range params {
		sampleParams[key] = sampleParameter(spec)
	}
	return map[string]interface{}{
		"inputs":     sampleInputs,
		"parameters": sampleParams,
	}
}

// Compile checks that a derived schema document is a well-formed JSON schema.
// Called at registration time so a bad shape fails at startup, not per request.
func Compile(doc map[string]interface{}) (*gojsonschema.Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return s, nil
}

func defName(typ models.InputType, defs map[string]interface{}) string {
	switch typ {
	case models.InputTypeText:
		defs["TextInput"] = textInputDef()
		return "TextInput"
	case models.InputTypeBatchText:
		defs["TextInput"] = textInputDef()
		defs["BatchTextInput"] = batchDef("texts", "TextInput")
		return "BatchTextInput"
	case models.InputTypeFile:
		defs["FileInput"] = fileInputDef()
		return "FileInput"
	case models.InputTypeBatchFile:
		defs["FileInput"] = fileInputDef()
		defs["BatchFileInput"] = batchDef("files", "FileInput")
		return "BatchFileInput"
	}
	return string(typ)
}

func textInputDef() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{"type": "string"},
		},
		"required":             []string{"text"},
		"additionalProperties": false,
	}
}

func fileInputDef() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{"type": "string"},
		},
		"required":             []string{"path"},
		"additionalProperties": false,
	}
}

func batchDef(field, itemDef string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			field: map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"$ref": "#/$defs/" + itemDef},
			},
		},
		"required":             []string{field},
		"additionalProperties": false,
	}
}

func paramProperty(spec models.ParamSpec) map[string]interface{} {
	prop := map[string]interface{}{"type": jsonType(spec.Type)}
	if spec.Min != nil {
		prop["minimum"] = *spec.Min
	}
	if spec.Max != nil {
		prop["maximum"] = *spec.Max
	}
	if len(spec.Options) > 0 {
		prop["enum"] = spec.Options
	}
	if spec.Default != nil {
		prop["default"] = spec.Default
	}
	return prop
}

func jsonType(t models.ParamType) string {
	switch t {
	case models.ParamTypeFloat:
		return "number"
	case models.ParamTypeInt:
		return "integer"
	case models.ParamTypeBool:
		return "boolean"
	default:
		return "string"
	}
}

func objectSchema(props map[string]interface{}, required []string) map[string]interface{} {
	obj := map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		obj["required"] = required
	}
	return obj
}

func sampleInput(typ models.InputType) interface{} {
	switch typ {
	case models.InputTypeText:
		return map[string]interface{}{"text": "Sample text"}
	case models.InputTypeBatchText:
		return map[string]interface{}{
			"texts": []interface{}{
				map[string]interface{}{"text": "Sample text 1"},
				map[string]interface{}{"text": "Sample text 2"},
			},
		}
	case models.InputTypeFile:
		return map[string]interface{}{"path": "/Users/path/to/file"}
	case models.InputTypeBatchFile:
		return map[string]interface{}{
			"files": []interface{}{
				map[string]interface{}{"path": "/Users/path/to/file1"},
				map[string]interface{}{"path": "/Users/path/to/file2"},
			},
		}
	}
	return nil
}

func sampleParameter(spec models.ParamSpec) interface{} {
	if spec.Default != nil {
		return spec.Default
	}
	switch spec.Type {
	case models.ParamTypeFloat:
		return 0.0
	case models.ParamTypeInt:
		return 0
	case models.ParamTypeBool:
		return false
	default:
		return ""
	}
}

func keysOf(shape models.InputShape) []string {
	keys := make([]string, 0, len(shape))
	for k := range shape {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func paramKeysOf(shape models.ParamShape) []string {
	keys := make([]string, 0, len(shape))
	for k := range shape {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
