package models

import (
	"encoding/json"
	"fmt"
)

// OutputType is the discriminant tag carried by every response envelope.
// It is declared first in each struct so serialization writes it first and
// clients can dispatch on it without look-ahead.
type OutputType string

const (
	OutputTypeText      OutputType = "text"
	OutputTypeBatchText OutputType = "batchtext"
	OutputTypeFile      OutputType = "file"
	OutputTypeBatchFile OutputType = "batchfile"
)

// FileType classifies the artifact a FileResponse points at.
type FileType string

const (
	FileTypeImg   FileType = "img"
	FileTypeCSV   FileType = "csv"
	FileTypeText  FileType = "text"
	FileTypeAudio FileType = "audio"
)

// Response is a rendering-ready named result returned by a task handler.
type Response interface {
	OutputType() OutputType
}

type TextResponse struct {
	Type     OutputType `json:"output_type"`
	Value    string     `json:"value"`
	Title    string     `json:"title"`
	Subtitle *string    `json:"subtitle"`
}

func NewTextResponse(title, value string) TextResponse {
	return TextResponse{Type: OutputTypeText, Value: value, Title: title}
}

func (TextResponse) OutputType() OutputType { return OutputTypeText }

type BatchTextResponse struct {
	Type  OutputType     `json:"output_type"`
	Texts []TextResponse `json:"texts"`
}

func NewBatchTextResponse(texts []TextResponse) BatchTextResponse {
	for i := range texts {
		texts[i].Type = OutputTypeText
	}
	return BatchTextResponse{Type: OutputTypeBatchText, Texts: texts}
}

func (BatchTextResponse) OutputType() OutputType { return OutputTypeBatchText }

type FileResponse struct {
	Type     OutputType `json:"output_type"`
	FileType FileType   `json:"file_type"`
	Path     string     `json:"path"`
	Title    string     `json:"title"`
	Subtitle *string    `json:"subtitle"`
}

func NewFileResponse(title, path string, fileType FileType) FileResponse {
	return FileResponse{Type: OutputTypeFile, FileType: fileType, Path: path, Title: title}
}

func (FileResponse) OutputType() OutputType { return OutputTypeFile }

type BatchFileResponse struct {
	Type  OutputType     `json:"output_type"`
	Files []FileResponse `json:"files"`
}

func NewBatchFileResponse(files []FileResponse) BatchFileResponse {
	for i := range files {
		files[i].Type = OutputTypeFile
	}
	return BatchFileResponse{Type: OutputTypeBatchFile, Files: files}
}

func (BatchFileResponse) OutputType() OutputType { return OutputTypeBatchFile }

// DecodeResponse parses a serialized response envelope back into its typed
// variant, dispatching on the output_type tag.
func DecodeResponse(data []byte) (Response, error) {
	var tag struct {
		Type OutputType `json:"output_type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}

	switch tag.Type {
	case OutputTypeText:
		var r TextResponse
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil
	case OutputTypeBatchText:
		var r BatchTextResponse
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil
	case OutputTypeFile:
		var r FileResponse
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil
	case OutputTypeBatchFile:
		var r BatchFileResponse
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown output_type %q", tag.Type)
	}
}
