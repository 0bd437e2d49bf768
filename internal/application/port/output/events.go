package output

type EventTarget interface {
	AddHandler(event string, fn func())
}

// Scheduler queues fn behind the work currently running.
type Scheduler interface {
	Post(fn func())
}
