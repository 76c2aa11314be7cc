package broker

import (
	"time"

	"github.com/streadway/amqp"

	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/rolevate/roomgo/internal/pkg/metrics"
	"github.com/rolevate/roomgo/internal/pkg/mongo"
	"github.com/rolevate/roomgo/internal/pkg/rabbit"
	"github.com/rolevate/roomgo/internal/pkg/roomserver"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/spf13/cobra"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
)

var rootCmd = &cobra.Command{
	Use:   "sessionService",
	Short: "Interview Session Broker Service",
	Long:  `HTTP server to create, join and leave AI interview sessions`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8000, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8080)
	cmdapp.Config.SetDefault("phone.defaultCountryCode", "962")
}

//Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting sessionService")
	var data ServiceData
	var err error
	data.health = healthcheck.NewHandler()
	err = initMetrics(&data)
	cmdapp.CheckOrPanic(err, "Can't init metrics")

	msgChannelProvider, err := rabbit.NewChannelProvider()
	cmdapp.CheckOrPanic(err, "Can't init rabbit channel")
	defer msgChannelProvider.Close()
	data.health.AddLivenessCheck("rabbit", healthcheck.Async(msgChannelProvider.Healthy, 10*time.Second))

	err = initQueues(msgChannelProvider)
	cmdapp.CheckOrPanic(err, "Can't init queues")

	data.MessageSender = rabbit.NewSender(msgChannelProvider)

	mongoSessionProvider, err := mongo.NewSessionProvider()
	cmdapp.CheckOrPanic(err, "Can't init mongo")
	defer mongoSessionProvider.Close()
	data.health.AddLivenessCheck("mongo", healthcheck.Async(mongoSessionProvider.Healthy, 10*time.Second))

	data.Applications, err = mongo.NewApplicationProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init application provider")

	data.AppStatusUpdater, err = mongo.NewApplicationStatusUpdater(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init application status updater")

	tokenIssuer, err := roomserver.NewTokenIssuer()
	cmdapp.CheckOrPanic(err, "Can't init token issuer")
	data.TokenIssuer = tokenIssuer

	data.RoomAllocator, err = mongo.NewRoomAllocator(mongoSessionProvider, tokenIssuer.TTL())
	cmdapp.CheckOrPanic(err, "Can't init room allocator")

	data.Rooms, err = mongo.NewRoomProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init room provider")

	data.StatusChanger, err = mongo.NewStatusChanger(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init status changer")

	data.TranscriptSaver, err = mongo.NewTranscriptSaver(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init transcript saver")

	data.Transcripts, err = mongo.NewTranscriptProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init transcript provider")

	data.DefaultCountryCode = cmdapp.Config.GetString("phone.defaultCountryCode")
	data.Port = cmdapp.Config.GetInt("port")

	err = StartWebServer(&data)
	cmdapp.CheckOrPanic(err, "Can't start web server")
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
	namespace := "session_service"
	data.metrics.createResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "create_request_durations_seconds",
			Help:      "Session create request latency distributions.",
		}, nil)
	err := metrics.Register(data.metrics.createResponseDur)
	if err != nil {
		return err
	}
	data.metrics.createRequestSize = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "create_request_size_bytes",
			Help:      "Session create request size in bytes.",
		}, nil)
	err = metrics.Register(data.metrics.createRequestSize)
	if err != nil {
		return err
	}
	data.metrics.joinResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "join_request_durations_seconds",
			Help:      "Session join request latency distributions.",
		}, nil)
	err = metrics.Register(data.metrics.joinResponseDur)
	if err != nil {
		return err
	}
	data.metrics.leaveResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "leave_request_durations_seconds",
			Help:      "Session leave request latency distributions.",
		}, nil)
	err = metrics.Register(data.metrics.leaveResponseDur)
	if err != nil {
		return err
	}
	data.metrics.transcriptResponseDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcript_request_durations_seconds",
			Help:      "Transcript request latency distributions.",
		}, nil)
	return metrics.Register(data.metrics.transcriptResponseDur)
}
