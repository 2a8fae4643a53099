package e2e

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ml-task-server/internal/common/logger"
	"ml-task-server/pkg/client"
	"ml-task-server/pkg/models"
	"ml-task-server/pkg/server"
)

// Spins up the real gin engine on a test listener and drives it through the
// task client, so the full serialize -> validate -> dispatch -> normalize path
// is exercised over actual HTTP.
func TestClientAgainstServer(t *testing.T) {
	s := server.New(logger.NewTestLogger(t))
	s.MustRegister("/process_text",
		models.InputShape{"text_inputs": models.InputTypeBatchText},
		models.ParamShape{},
		func(inputs map[string]models.Input, _ map[string]interface{}) (models.Response, error) {
			batch := inputs["text_inputs"].(models.BatchTextInput)
			results := make([]models.TextResponse, 0, len(batch.Texts))
			for _, in := range batch.Texts {
				results = append(results, models.NewTextResponse(in.Text, "processed_text.txt"))
			}
			return models.NewBatchTextResponse(results), nil
		},
	)

	ts := httptest.NewServer(s.Engine())
	defer ts.Close()

	cl := client.New(ts.URL+"/process_text", client.WithLogger(logger.NewTestLogger(t)))

	inputs := map[string]interface{}{
		"text_inputs": map[string]interface{}{
			"texts": []interface{}{
				map[string]interface{}{"text": "Sample text"},
			},
		},
	}

	result, err := cl.Request(context.Background(), inputs, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "batchtext", result["output_type"])

	// a validation failure comes back as a value, not an error
	bad, err := cl.Request(context.Background(), map[string]interface{}{"WRONG_KEY": inputs["text_inputs"]}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "VALIDATION_ERROR", bad["status"])
	assert.Contains(t, bad["error"], "Keys mismatch. The input schema has")
}
