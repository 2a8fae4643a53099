// Package models defines the typed input/output/parameter contracts exchanged
// between task handlers and the HTTP surface.
package models

// InputType discriminates the supported input variants.
type InputType string

const (
	InputTypeText      InputType = "text"
	InputTypeBatchText InputType = "batchtext"
	InputTypeFile      InputType = "file"
	InputTypeBatchFile InputType = "batchfile"
)

// Input is a named, typed unit of task input. Handlers type-assert the
// concrete variant declared in the route's input shape.
type Input interface {
	InputType() InputType
}

// InputShape maps route-declared input keys to their variant type.
type InputShape map[string]InputType

type TextInput struct {
	Text string `json:"text"`
}

func (TextInput) InputType() InputType { return InputTypeText }

type BatchTextInput struct {
	Texts []TextInput `json:"texts"`
}

func (BatchTextInput) InputType() InputType { return InputTypeBatchText }

// FileInput carries an opaque file path; no I/O is performed on it here.
type FileInput struct {
	Path string `json:"path"`
}

func (FileInput) InputType() InputType { return InputTypeFile }

type BatchFileInput struct {
	Files []FileInput `json:"files"`
}

func (BatchFileInput) InputType() InputType { return InputTypeBatchFile }
