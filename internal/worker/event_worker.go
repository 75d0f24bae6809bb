package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartActivityWorker registers the activity log handlers.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}

// StartEventForwarders subscribes each forwarder to every event type. Nil
// forwarders are skipped so optional brokers can be passed unconditionally.
func StartEventForwarders(dispatcher events.Dispatcher, forwarders ...events.EventHandler) int {
	if dispatcher == nil {
		return 0
	}
	started := 0
	for _, forward := range forwarders {
		if forward == nil {
			continue
		}
		events.SubscribeAll(dispatcher, forward)
		started++
	}
	return started
}
