package serialize

// Message is implemented by types that encode themselves with the
// primitives of this package.
type Message interface {
	ByteSize() int
	Serialize(*Writer)
	Deserialize(*Reader) error
}
