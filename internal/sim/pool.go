package sim

import "sync"

// BufferPool recycles fixed-length scratch slices, one length per pool.
type BufferPool struct {
	pool sync.Pool
	size int
}

func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				b := make([]float64, size)
				return &b
			},
		},
	}
}

func (p *BufferPool) Size() int { return p.size }

func (p *BufferPool) Get() []float64 {
	return *p.pool.Get().(*[]float64)
}

// Put zeroes b and returns it to the pool. Slices of another length are
// dropped.
func (p *BufferPool) Put(b []float64) {
	if len(b) != p.size {
		return
	}
	for i := range b {
		b[i] = 0
	}
	p.pool.Put(&b)
}

func (p *BufferPool) GetAndCopy(src []float64) []float64 {
	dst := p.Get()
	copy(dst, src)
	return dst
}
