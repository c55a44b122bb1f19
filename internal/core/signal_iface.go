package core

// Frame is one encoded message for a client (a JSON document).
type Frame []byte

// SignalConnection abstracts the client messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
