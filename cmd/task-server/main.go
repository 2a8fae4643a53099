// cmd/task-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ml-task-server/internal/common/config"
	"ml-task-server/internal/common/logger"
	"ml-task-server/pkg/models"
	"ml-task-server/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()
	log := logger.NewZapAdapter(zlog)

	s := server.New(log)
	registerRoutes(s)

	s.Engine().GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.Engine().GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: s.Engine(),
	}

	go func() {
		log.Info("server listening", map[string]interface{}{"addr": cfg.Server.Addr()})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server failed", nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown failed", nil)
	}
	log.Info("server stopped", nil)
}

// registerRoutes wires the demo task routes. Registration happens entirely
// before serving; a duplicate path or bad shape aborts startup.
func registerRoutes(s *server.Server) {
	s.MustRegister("/process_text",
		models.InputShape{"text_inputs": models.InputTypeBatchText},
		models.ParamShape{},
		processText,
	)

	s.MustRegister("/process_file",
		models.InputShape{"file_inputs": models.InputTypeBatchFile},
		models.ParamShape{},
		processFile,
	)

	s.MustRegister("/process_file_with_schema",
		models.InputShape{"file_inputs": models.InputTypeBatchFile},
		models.ParamShape{},
		processFile,
		server.WithTaskSchema(fileTaskSchema),
		server.WithOrder(0),
	)
}

func processText(inputs map[string]models.Input, _ map[string]interface{}) (models.Response, error) {
	batch := inputs["text_inputs"].(models.BatchTextInput)
	results := make([]models.TextResponse, 0, len(batch.Texts))
	for _, t := range batch.Texts {
		results = append(results, models.NewTextResponse(t.Text, strings.ToUpper(t.Text)))
	}
	return models.NewBatchTextResponse(results), nil
}

func processFile(inputs map[string]models.Input, _ map[string]interface{}) (models.Response, error) {
	batch := inputs["file_inputs"].(models.BatchFileInput)
	results := make([]models.FileResponse, 0, len(batch.Files))
	for _, f := range batch.Files {
		results = append(results, models.NewFileResponse(f.Path, "processed_image.img", models.FileTypeImg))
	}
	return models.NewBatchFileResponse(results), nil
}

func fileTaskSchema() models.TaskSchema {
	return models.TaskSchema{
		Inputs: []models.InputSchema{
			{Key: "file_inputs", Label: "File Inputs", InputType: models.InputTypeBatchFile},
		},
		Parameters: []models.ParameterSchema{
			{
				Key:   "param1",
				Label: "Parameter 1",
				Value: models.NewRangedFloatDescriptor(0, 1, 0.5),
			},
		},
	}
}
