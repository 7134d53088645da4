// Package memory provides the backing store that receives the write backs
// of the simulated translation hierarchy.
package memory

import "fmt"

// Capacity units in bytes.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// A Storage keeps the data of the simulated system. Data is allocated in
// units, so frames that are never written cost nothing on the host.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the given capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: 4096,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) unit(addr uint64) ([]byte, error) {
	if addr >= s.capacity {
		return nil, fmt.Errorf(
			"address 0x%x is beyond the storage capacity", addr)
	}

	base := addr - addr%s.unitSize
	u, ok := s.data[base]
	if !ok {
		u = make([]byte, s.unitSize)
		s.data[base] = u
	}

	return u, nil
}

// Read returns n bytes starting at addr. Regions that were never written
// read as zero.
func (s *Storage) Read(addr, n uint64) ([]byte, error) {
	res := make([]byte, n)

	offset := uint64(0)
	for offset < n {
		u, err := s.unit(addr + offset)
		if err != nil {
			return nil, err
		}

		inUnit := (addr + offset) % s.unitSize
		chunk := s.unitSize - inUnit
		if chunk > n-offset {
			chunk = n - offset
		}

		copy(res[offset:offset+chunk], u[inUnit:inUnit+chunk])
		offset += chunk
	}

	return res, nil
}

// Write stores data starting at addr.
func (s *Storage) Write(addr uint64, data []byte) error {
	offset := uint64(0)
	for offset < uint64(len(data)) {
		u, err := s.unit(addr + offset)
		if err != nil {
			return err
		}

		inUnit := (addr + offset) % s.unitSize
		chunk := s.unitSize - inUnit
		if chunk > uint64(len(data))-offset {
			chunk = uint64(len(data)) - offset
		}

		copy(u[inUnit:inUnit+chunk], data[offset:offset+chunk])
		offset += chunk
	}

	return nil
}
