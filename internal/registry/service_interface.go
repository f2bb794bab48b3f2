package registry

// Service is the interface for all long-running tools.
type Service interface {
	Start() error
	Stop() error
}

// Finisher is implemented by services that end on their own once their work is done.
// Done is closed when that happens.
type Finisher interface {
	Done() <-chan struct{}
}
