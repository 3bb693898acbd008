package interfaces

// EventPublisher emits domain events keyed by the record they concern.
type EventPublisher interface {
	Publish(key string, event any) error
	Close() error
}
