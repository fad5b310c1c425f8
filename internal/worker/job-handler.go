package worker

import (
	"context"
	"fmt"

	"github.com/akashyap25/eazy-event-server-sub000/internal/queue"
	"github.com/akashyap25/eazy-event-server-sub000/internal/utils/types"
	worker_handler "github.com/akashyap25/eazy-event-server-sub000/internal/worker/worker-handler"
)

func HandleJob(ctx context.Context, job queue.Job, handler *worker_handler.WorkerHandler) error {
	switch job.Type {
	case types.JobBroadcastRoomEvent:
		return handler.HandleBroadcastRoomEvent(job.Payload)
	case types.JobNotifyRoomCreated:
		return handler.HandleNotifyRoomCreated(ctx, job.Payload)
	case types.JobEventAnnouncement:
		return handler.HandleEventAnnouncement(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
