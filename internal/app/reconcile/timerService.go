package reconcile

import (
	"time"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
)

//Worker does one full reconciliation pass
type Worker interface {
	ReconcileAll() error
}

type timerServiceData struct {
	runEvery     time.Duration
	worker       Worker
	qChan        chan struct{}
	workWaitChan chan struct{}
}

func startReconcileTimer(data *timerServiceData) error {
	cmdapp.Log.Infof("Starting timer service every %v", data.runEvery)
	go serviceLoop(data)
	return nil
}

func serviceLoop(data *timerServiceData) {
	ticker := time.NewTicker(data.runEvery)
	// run on startup
	doReconcile(data)
mainloop:
	for {
		select {
		case <-ticker.C:
			doReconcile(data)
		case <-data.qChan:
			ticker.Stop()
			break mainloop
		}
	}
	cmdapp.Log.Infof("Stopped timer service")
	close(data.workWaitChan)
}

func doReconcile(data *timerServiceData) {
	cmdapp.Log.Info("Running reconciliation")
	if err := data.worker.ReconcileAll(); err != nil {
		cmdapp.Log.Error(err)
	}
}
