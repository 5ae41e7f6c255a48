package activity

import (
	"context"
	"log"

	"fieldflow/internal/core/ports"
	"fieldflow/internal/domain"
)

// Feed consumes post-commit mutation events and records them as activity
// lines. The real audit writer lives outside this engine; this consumer is
// the seam it hangs off.
type Feed struct {
	eventBus ports.EventBus
}

func NewFeed(bus ports.EventBus) *Feed {
	return &Feed{eventBus: bus}
}

// Start begins the listening loop. Call this in main.go as a goroutine.
func (f *Feed) Start(ctx context.Context) {
	log.Println("Activity feed started, listening for task events...")

	eventChannel, err := f.eventBus.SubscribeToTaskEvents(ctx)
	if err != nil {
		log.Fatalf("Failed to subscribe to event bus: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Activity feed shutting down...")
			return

		case event := <-eventChannel:
			f.record(event)
		}
	}
}

func (f *Feed) record(event domain.TaskMutatedEvent) {
	log.Printf("Activity: task %s %s (job %s v%d) old=%s new=%s",
		event.TaskID, event.Action, event.JobID, event.JobVersion,
		string(event.Old), string(event.New))
}
