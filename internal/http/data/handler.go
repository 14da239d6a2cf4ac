package data

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/demo-backend/internal/platform/logging"
)

// Path is the route the data endpoint is served on.
const Path = "/api/data"

// Register wires the data route into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-data",
		Method:      http.MethodGet,
		Path:        Path,
		Summary:     "Get the data values",
		Tags:        []string{"Data"},
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	values := Values()
	applog.LogInfo(ctx, "data get", zap.String("path", Path), zap.Int("count", len(values)))
	return &GetOutput{Body: Result{Status: StatusSuccess, Data: values}}, nil
}
