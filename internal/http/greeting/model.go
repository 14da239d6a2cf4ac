package greeting

// Message is the fixed greeting returned by the root route.
const Message = "Hello from Python Backend!"

// Data models the response payload for the root route.
type Data struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello from Python Backend!"`
}

// GetOutput is the response wrapper for the root route.
type GetOutput struct {
	Body Data
}
