package typeid

import "fmt"

// Pair is the type descriptor of one channel endpoint: the type it sends
// and the type it receives.
type Pair struct {
	Send ID
	Recv ID
}

// PairOf returns the descriptor of an endpoint that sends S and receives R.
func PairOf[S, R any]() Pair {
	return Pair{
		Send: Of[S](),
		Recv: Of[R](),
	}
}

// Reverse returns the descriptor the peer endpoint is expected to hold.
func (p Pair) Reverse() Pair {
	return Pair{
		Send: p.Recv,
		Recv: p.Send,
	}
}

func (p Pair) Symmetric() bool {
	return p.Send == p.Recv
}

func (p Pair) String() string {
	return fmt.Sprintf("send=%s recv=%s", p.Send.Short(), p.Recv.Short())
}
