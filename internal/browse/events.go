package browse

// Event is a one-shot notification from a model to its screen.
type Event interface {
	event()
}

// NavigateToDetail asks the screen to open the detail view of ID.
type NavigateToDetail struct {
	ID int
}

// NavigateBack asks the screen to leave the detail view.
type NavigateBack struct{}

// ShowError asks the screen to surface Message once.
type ShowError struct {
	Message string
}

func (NavigateToDetail) event() {}
func (NavigateBack) event()     {}
func (ShowError) event()        {}

// eventBuffer is the capacity of every model's event channel.
const eventBuffer = 16

type emitter struct {
	ch chan Event
}

func newEmitter() emitter {
	return emitter{ch: make(chan Event, eventBuffer)}
}

// emit delivers ev without blocking. Events are dropped once the buffer is
// full.
func (e emitter) emit(ev Event) {
	select {
	case e.ch <- ev:
	default:
	}
}
