package worker

import (
	"github.com/spec-kit/contest-provisioner/internal/service"
)

// StartHistoryWorker registers run history handlers.
func StartHistoryWorker(historyService *service.HistoryService) {
	if historyService == nil {
		return
	}
	historyService.RegisterHandlers()
}
