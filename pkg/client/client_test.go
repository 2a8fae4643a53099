package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ml-task-server/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

type mockTransport struct {
	resp    *http.Response
	err     error
	lastReq *http.Request
	body    string
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.body = string(data)
	}
	return m.resp, m.err
}

func makeResponse(status int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func textInputs() map[string]interface{} {
	return map[string]interface{}{
		"text_inputs": map[string]interface{}{
			"texts": []interface{}{
				map[string]interface{}{"text": "Sample text"},
			},
		},
	}
}

// ==========================
// Tests
// ==========================

func TestSetURL(t *testing.T) {
	c := New("http://127.0.0.1:5000/predict")
	c.SetURL("http://localhost:8000/sentimentanalysis")
	assert.Equal(t, "http://localhost:8000/sentimentanalysis", c.URL())
}

func TestRequest_Success(t *testing.T) {
	responseBody := `{
		"output_type": "batchtext",
		"texts": [{"output_type": "text", "value": "processed_text.txt", "title": "Sample text", "subtitle": null}]
	}`
	transport := &mockTransport{resp: makeResponse(http.StatusOK, "application/json", responseBody)}
	c := New("http://127.0.0.1:5000/process_text",
		WithTransport(transport),
		WithLogger(logger.NewTestLogger(t)),
	)

	result, err := c.Request(context.Background(), textInputs(), map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, "batchtext", result["output_type"])
	texts := result["texts"].([]interface{})
	require.Len(t, texts, 1)
	first := texts[0].(map[string]interface{})
	assert.Equal(t, "processed_text.txt", first["value"])
	assert.Equal(t, "Sample text", first["title"])
	assert.Nil(t, first["subtitle"])

	// outbound envelope carries both top-level keys
	require.NotNil(t, transport.lastReq)
	assert.Equal(t, http.MethodPost, transport.lastReq.Method)
	assert.Equal(t, "application/json", transport.lastReq.Header.Get("Content-Type"))
	assert.JSONEq(t, `{
		"inputs": {"text_inputs": {"texts": [{"text": "Sample text"}]}},
		"parameters": {}
	}`, transport.body)
}

func TestRequest_Non2xxPassesBodyThrough(t *testing.T) {
	transport := &mockTransport{resp: makeResponse(http.StatusBadRequest, "application/json", `{"status": "failed"}`)}
	c := New("http://127.0.0.1:5000/process_file", WithTransport(transport))

	result, err := c.Request(context.Background(), textInputs(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"status": "failed"}, result)
}

func TestRequest_NonJSONResponse(t *testing.T) {
	transport := &mockTransport{resp: makeResponse(http.StatusOK, "text/html", `<html>redirected</html>`)}
	c := New("http://127.0.0.1:5000/process_file",
		WithTransport(transport),
		WithLogger(logger.NewTestLogger(t)),
	)

	result, err := c.Request(context.Background(), textInputs(), map[string]interface{}{})
	require.NoError(t, err)

	assert.Contains(t, result["status"], "Unknown error")
	errs, ok := result["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Contains(t, first["msg"], "Unknown error")
}

func TestRequest_MalformedJSONBody(t *testing.T) {
	transport := &mockTransport{resp: makeResponse(http.StatusOK, "application/json", `{"truncated": `)}
	c := New("http://127.0.0.1:5000/process_file", WithTransport(transport))

	result, err := c.Request(context.Background(), textInputs(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Contains(t, result["status"], "Unknown error")
}

func TestRequest_TransportFailure(t *testing.T) {
	transport := &mockTransport{err: io.ErrUnexpectedEOF}
	c := New("http://127.0.0.1:5000/process_file", WithTransport(transport))

	_, err := c.Request(context.Background(), textInputs(), map[string]interface{}{})
	assert.Error(t, err)
}
