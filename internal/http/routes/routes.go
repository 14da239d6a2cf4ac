package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/demo-backend/internal/http/data"
	"github.com/janisto/demo-backend/internal/http/greeting"
)

// Register wires all API routes into the provided API router.
func Register(api huma.API) {
	greeting.Register(api)
	data.Register(api)
}
