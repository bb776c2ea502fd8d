// internal/pipeline/angle-resolution/models.go
package angleresolution

type Input struct {
	Angle string `json:"angle"`
}
