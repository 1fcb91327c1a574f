// File: internal/interfaces/byte_source.go
package interfaces

// ByteSource is a random-access provider of volume bytes. Each call is a
// self-contained positioned read, so implementations must be safe for
// concurrent use.
type ByteSource interface {
	// ReadAt returns exactly length bytes starting at offset, or an error
	ReadAt(offset uint64, length uint32) ([]byte, error)
}

// SizedByteSource is a ByteSource that knows its total length
type SizedByteSource interface {
	ByteSource

	// Size returns the number of readable bytes
	Size() uint64
}
