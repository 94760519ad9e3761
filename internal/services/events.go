package services

import "github.com/gRaffRO/VoyageHub-sub000/internal/realtime"

// Publisher рассылает события об изменениях. Реализуется realtime.Hub.
type Publisher interface {
	Publish(ev realtime.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(realtime.Event) {}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
