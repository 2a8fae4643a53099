package models

import (
	"fmt"
	"math"
	"sort"
)

// StatusValidationError tags every 400 body produced by the dispatch pipeline.
const StatusValidationError = "VALIDATION_ERROR"

// ValidationFailure is the 400 response body. Error is either a plain string
// (envelope / key-set failures) or a single-element []FieldError (field-level
// failures), matching the wire contract.
type ValidationFailure struct {
	Status string      `json:"status"`
	Error  interface{} `json:"error"`
}

// FieldError reports the first field-level problem found while walking a
// declared shape. Loc is the path from the input key down to the field.
type FieldError struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

const (
	MsgFieldRequired = "Field required"
	MsgExtraInputs   = "Extra inputs are not permitted"
)

func requiredError(loc []interface{}) *FieldError {
	return &FieldError{Loc: loc, Msg: MsgFieldRequired}
}

func typeError(loc []interface{}, want string) *FieldError {
	return &FieldError{Loc: loc, Msg: fmt.Sprintf("Input should be a valid %s", want)}
}

// childPath returns a fresh path slice so sibling errors never share backing
// arrays.
func childPath(loc []interface{}, elem interface{}) []interface{} {
	out := make([]interface{}, 0, len(loc)+1)
	out = append(out, loc...)
	return append(out, elem)
}

// DecodeInput validates a raw JSON value against the declared variant type and
// converts it to the typed Input. Validation is fail-fast: the first problem
// found is returned and the walk stops.
func DecodeInput(raw interface{}, typ InputType, loc []interface{}) (Input, *FieldError) {
	switch typ {
	case InputTypeText:
		return decodeTextInput(raw, loc)
	case InputTypeBatchText:
		return decodeBatchTextInput(raw, loc)
	case InputTypeFile:
		return decodeFileInput(raw, loc)
	case InputTypeBatchFile:
		return decodeBatchFileInput(raw, loc)
	default:
		return nil, typeError(loc, "input variant")
	}
}

func decodeTextInput(raw interface{}, loc []interface{}) (Input, *FieldError) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, typeError(loc, "object")
	}
	rawText, ok := obj["text"]
	if !ok {
		return nil, requiredError(childPath(loc, "text"))
	}
	text, ok := rawText.(string)
	if !ok {
		return nil, typeError(childPath(loc, "text"), "string")
	}
	if fe := checkNoExtraKeys(obj, loc, "text"); fe != nil {
		return nil, fe
	}
	return TextInput{Text: text}, nil
}

func decodeFileInput(raw interface{}, loc []interface{}) (Input, *FieldError) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, typeError(loc, "object")
	}
	rawPath, ok := obj["path"]
	if !ok {
		return nil, requiredError(childPath(loc, "path"))
	}
	path, ok := rawPath.(string)
	if !ok {
		return nil, typeError(childPath(loc, "path"), "string")
	}
	if fe := checkNoExtraKeys(obj, loc, "path"); fe != nil {
		return nil, fe
	}
	return FileInput{Path: path}, nil
}

func decodeBatchTextInput(raw interface{}, loc []interface{}) (Input, *FieldError) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, typeError(loc, "object")
	}
	rawTexts, ok := obj["texts"]
	if !ok {
		return nil, requiredError(childPath(loc, "texts"))
	}
	arr, ok := rawTexts.([]interface{})
	if !ok {
		return nil, typeError(childPath(loc, "texts"), "list")
	}
	texts := make([]TextInput, 0, len(arr))
	for i, item := range arr {
		in, fe := decodeTextInput(item, childPath(childPath(loc, "texts"), i))
		if fe != nil {
			return nil, fe
		}
		texts = append(texts, in.(TextInput))
	}
	if fe := checkNoExtraKeys(obj, loc, "texts"); fe != nil {
		return nil, fe
	}
	return BatchTextInput{Texts: texts}, nil
}

func decodeBatchFileInput(raw interface{}, loc []interface{}) (Input, *FieldError) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, typeError(loc, "object")
	}
	rawFiles, ok := obj["files"]
	if !ok {
		return nil, requiredError(childPath(loc, "files"))
	}
	arr, ok := rawFiles.([]interface{})
	if !ok {
		return nil, typeError(childPath(loc, "files"), "list")
	}
	files := make([]FileInput, 0, len(arr))
	for i, item := range arr {
		in, fe := decodeFileInput(item, childPath(childPath(loc, "files"), i))
		if fe != nil {
			return nil, fe
		}
		files = append(files, in.(FileInput))
	}
	if fe := checkNoExtraKeys(obj, loc, "files"); fe != nil {
		return nil, fe
	}
	return BatchFileInput{Files: files}, nil
}

// Required fields are checked before exactness, so a value that is both
// missing a declared field and carrying an undeclared one reports
// "Field required" first. Keys are scanned in sorted order so the reported
// extra key is deterministic.
func checkNoExtraKeys(obj map[string]interface{}, loc []interface{}, declared ...string) *FieldError {
	allowed := make(map[string]bool, len(declared))
	for _, k := range declared {
		allowed[k] = true
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if !allowed[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return &FieldError{Loc: childPath(loc, keys[0]), Msg: MsgExtraInputs}
}

// DecodeParameter validates a raw JSON value against the parameter's declared
// primitive type and returns the typed value (int parameters come back as int,
// everything else keeps its JSON primitive type).
func DecodeParameter(raw interface{}, spec ParamSpec, key string) (interface{}, *FieldError) {
	loc := []interface{}{key}
	switch spec.Type {
	case ParamTypeFloat:
		f, ok := raw.(float64)
		if !ok {
			return nil, typeError(loc, "number")
		}
		return f, nil
	case ParamTypeInt:
		f, ok := raw.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, typeError(loc, "integer")
		}
		return int(f), nil
	case ParamTypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, typeError(loc, "string")
		}
		return s, nil
	case ParamTypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, typeError(loc, "boolean")
		}
		return b, nil
	default:
		return nil, typeError(loc, "parameter value")
	}
}
