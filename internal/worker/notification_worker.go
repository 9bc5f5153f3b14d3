package worker

import (
	"context"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/notifier"
	"github.com/siyabongaprospersithole/support-ticket-system/internal/service"
)

// StartNotificationWorker registers notification handlers and spawns the
// delivery loops. Workers exit when ctx is cancelled; callers cancel the
// context during shutdown after the HTTP server has drained.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, deliverer *notifier.Deliverer, workers int) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()

	if deliverer == nil {
		return
	}
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go deliverer.Run(ctx)
	}
}
