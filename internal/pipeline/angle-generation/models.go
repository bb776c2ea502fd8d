// internal/pipeline/angle-generation/models.go
package anglegeneration

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	Angles []string `json:"angles"`
}
