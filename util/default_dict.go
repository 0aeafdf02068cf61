package util

import "sort"

// DefaultDict is a sparse float counter keyed by uint32. Keys that were
// never touched read as the default value, and the first update of a key
// starts from the default.
type DefaultDict struct {
	def  float64
	data map[uint32]float64
}

func NewDefaultDict(def float64) *DefaultDict {
	return &DefaultDict{
		def:  def,
		data: make(map[uint32]float64),
	}
}

// get the value stored for key, or the default
func (d *DefaultDict) Get(key uint32) float64 {
	if v, ok := d.data[key]; ok {
		return v
	}
	return d.def
}

func (d *DefaultDict) Set(key uint32, val float64) {
	d.data[key] = val
}

// increment the value of key by val
func (d *DefaultDict) Incr(key uint32, val float64) {
	if _, ok := d.data[key]; !ok {
		d.data[key] = d.def
	}
	d.data[key] += val
}

// decrement the value of key by val
func (d *DefaultDict) Decr(key uint32, val float64) {
	if _, ok := d.data[key]; !ok {
		d.data[key] = d.def
	}
	d.data[key] -= val
}

func (d *DefaultDict) Contains(key uint32) bool {
	_, ok := d.data[key]
	return ok
}

func (d *DefaultDict) Default() float64 {
	return d.def
}

// Keys returns the explicitly stored keys in ascending order.
func (d *DefaultDict) Keys() []uint32 {
	keys := make([]uint32, 0, len(d.data))
	for k := range d.data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (d *DefaultDict) Len() int {
	return len(d.data)
}
