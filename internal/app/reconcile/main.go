package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/rolevate/roomgo/internal/pkg/metrics"
	"github.com/rolevate/roomgo/internal/pkg/mongo"
	"github.com/rolevate/roomgo/internal/pkg/rabbit"
	"github.com/rolevate/roomgo/internal/pkg/roomserver"

	"github.com/heptiolabs/healthcheck"
)

var appName = "Interview Reconcile Service"

var rootCmd = &cobra.Command{
	Use:   "reconcileService",
	Short: appName,
	Long:  `Service to periodically compare local session records with the room server`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8000, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8080)
	cmdapp.Config.SetDefault("reconcile.interval", time.Minute)
}

//Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)

	data := &ServiceData{}
	data.health = healthcheck.NewHandler()
	data.Port = cmdapp.Config.GetInt("port")
	err := initMetrics(data)
	cmdapp.CheckOrPanic(err, "Can't init metrics")

	mongoSessionProvider, err := mongo.NewSessionProvider()
	cmdapp.CheckOrPanic(err, "Can't init mongo")
	defer mongoSessionProvider.Close()
	data.health.AddLivenessCheck("mongo", healthcheck.Async(mongoSessionProvider.Healthy, 10*time.Second))

	roomProvider, err := mongo.NewRoomProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init room provider")

	statusChanger, err := mongo.NewStatusChanger(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init status changer")

	roomClient, err := roomserver.NewClient()
	cmdapp.CheckOrPanic(err, "Can't init room server client")

	msgChannelProvider, err := rabbit.NewChannelProvider()
	cmdapp.CheckOrPanic(err, "Can't init rabbit channel")
	defer msgChannelProvider.Close()
	data.health.AddLivenessCheck("rabbit", healthcheck.Async(msgChannelProvider.Healthy, 10*time.Second))

	err = initQueues(msgChannelProvider)
	cmdapp.CheckOrPanic(err, "Can't init queues")

	divergenceCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reconcile_service",
		Name:      "divergence_total",
		Help:      "Count of rooms the room server could not explain.",
	})
	err = metrics.Register(divergenceCounter)
	cmdapp.CheckOrPanic(err, "Can't register metrics")

	worker, err := NewReconciler(roomProvider, roomClient, statusChanger,
		rabbit.NewSender(msgChannelProvider), divergenceCounter)
	cmdapp.CheckOrPanic(err, "Can't init reconciler")
	data.worker = worker

	tData := &timerServiceData{}
	tData.runEvery = cmdapp.Config.GetDuration("reconcile.interval")
	tData.worker = worker
	tData.qChan = make(chan struct{})
	tData.workWaitChan = make(chan struct{})
	err = startReconcileTimer(tData)
	cmdapp.CheckOrPanic(err, "Can't start timer")
	defer close(tData.qChan)

	err = StartWebServer(data)
	cmdapp.CheckOrPanic(err, "")
}

func initQueues(prv *rabbit.ChannelProvider) error {
	cmdapp.Log.Info("Initializing queues")
	return prv.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
		for _, q := range []string{messages.SessionEnded, messages.StatusChanged} {
			if _, err := rabbit.Declare(ch, prv.QueueName(q)); err != nil {
				return err
			}
		}
		return nil
	})
}

func initMetrics(data *ServiceData) error {
	data.metrics.responseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reconcile_service",
			Name:      "request_durations_seconds",
			Help:      "Request latency distributions.",
		}, nil)
	return metrics.Register(data.metrics.responseDur)
}
