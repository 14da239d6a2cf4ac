package data

// StatusSuccess is the status reported by every data response.
const StatusSuccess = "success"

// Values returns a fresh copy of the fixed data sequence.
func Values() []int {
	return []int{1, 2, 3, 4, 5}
}

// Result models the response payload for the data route.
type Result struct {
	Status string `json:"status" doc:"Outcome of the request" example:"success" enum:"success"`
	Data   []int  `json:"data" doc:"Ordered data values" example:"[1,2,3,4,5]"`
}

// GetOutput is the response wrapper for the data route.
type GetOutput struct {
	Body Result
}
