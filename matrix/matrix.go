package matrix

type Matrix interface {
	Shape() (uint32, uint32)
	Get(uint32, uint32) float64
	Set(uint32, uint32, float64)
	GetRow(uint32) []float64
}
