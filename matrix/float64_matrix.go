package matrix

// internal Float64 matrix representation
type Float64Matrix struct {
	nrow uint32
	ncol uint32
	data []float64
}

// NewFloat64Matrix creates a new Float64Matrix with r rows and c columns.
// if r*c <= 0, it will panic. The data layout is in row major order, i.e.
// the (i*c + j)-th element in the data slice is the [i, j]-th element.
func NewFloat64Matrix(r, c uint32) *Float64Matrix {
	if r == 0 || c == 0 {
		panic(ErrBadShape)
	}
	return &Float64Matrix{
		nrow: r,
		ncol: c,
		data: make([]float64, r*c),
	}
}

// get the shape of the matrix
func (m *Float64Matrix) Shape() (uint32, uint32) {
	return m.nrow, m.ncol
}

// get the [r, c]-th element of the matrix
func (m *Float64Matrix) Get(r, c uint32) float64 {
	if r >= m.nrow || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	return m.data[r*m.ncol+c]
}

// get a copy of the r-th row of the matrix
func (m *Float64Matrix) GetRow(r uint32) []float64 {
	if r >= m.nrow {
		panic(ErrIndexOutOfRange)
	}
	row := make([]float64, m.ncol)
	copy(row, m.data[r*m.ncol:(r+1)*m.ncol])
	return row
}

// set val to the [r, c]-th element of the matrix
func (m *Float64Matrix) Set(r, c uint32, val float64) {
	if r >= m.nrow || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	m.data[r*m.ncol+c] = val
}

// set the r-th row of the matrix from vals
func (m *Float64Matrix) SetRow(r uint32, vals []float64) {
	if r >= m.nrow || uint32(len(vals)) != m.ncol {
		panic(ErrIndexOutOfRange)
	}
	copy(m.data[r*m.ncol:(r+1)*m.ncol], vals)
}

var _ Matrix = (*Float64Matrix)(nil)
