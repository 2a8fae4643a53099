// cmd/task-client/main.go
//
// Small CLI around the task client: builds a {inputs, parameters} envelope
// for a text route and prints the normalized result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"ml-task-server/internal/common/config"
	"ml-task-server/internal/common/httpx"
	"ml-task-server/internal/common/logger"
	"ml-task-server/pkg/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var (
		route = flag.String("route", "/process_text", "task route to call")
		text  = flag.String("text", "Sample text", "text input to submit")
		url   = flag.String("url", "", "full endpoint URL (overrides config base URL + route)")
	)
	flag.Parse()

	target := *url
	if target == "" {
		target = cfg.Client.BaseURL + *route
	}

	cl := client.New(target,
		client.WithTransport(httpx.NewClient(time.Duration(cfg.Client.TimeoutMs)*time.Millisecond)),
		client.WithLogger(logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)),
	)

	inputs := map[string]interface{}{
		"text_inputs": map[string]interface{}{
			"texts": []interface{}{
				map[string]interface{}{"text": *text},
			},
		},
	}

	result, err := cl.Request(context.Background(), inputs, map[string]interface{}{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
