package executor

// Path locates a value in the response tree: field names and list indexes.
type Path []PathElement

type PathElement any

// GraphQLError represents an error that occurred during evaluation
type GraphQLError struct {
	Message string `json:"message"`
	Path    Path   `json:"path,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult represents the result of evaluating one operation
type ExecutionResult struct {
	Data   map[string]any `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
