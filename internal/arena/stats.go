package arena

import "fmt"

// Stats summarises arena usage for diagnostics.
type Stats struct {
	AllocatedBytes int `json:"allocated_bytes" msgpack:"allocated_bytes"`
	RegistryBytes  int `json:"registry_bytes" msgpack:"registry_bytes"`
	Chunks         int `json:"chunks" msgpack:"chunks"`
	Capacity       int `json:"capacity" msgpack:"capacity"`
	Released       int `json:"released" msgpack:"released"`
}

// Stats reports the current usage without releasing anything.
func (a *Arena) Stats() Stats {
	return Stats{
		AllocatedBytes: a.bytes,
		RegistryBytes:  a.capacity * slotBytes,
		Chunks:         a.Len(),
		Capacity:       a.capacity,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("allocated %d + %d bytes, %d/%d slots", s.AllocatedBytes, s.RegistryBytes, s.Chunks, s.Capacity)
}
