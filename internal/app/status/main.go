package status

import (
	"github.com/streadway/amqp"

	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/rolevate/roomgo/internal/pkg/mongo"
	"github.com/rolevate/roomgo/internal/pkg/rabbit"
	"github.com/rolevate/roomgo/internal/pkg/roomserver"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/spf13/cobra"
)

var appName = "Interview Status Service"

var rootCmd = &cobra.Command{
	Use:   "statusService",
	Short: appName,
	Long:  `HTTP server to provide interview session status and push updates over websocket`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8000, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8080)
}

//Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	mongoSessionProvider, err := mongo.NewSessionProvider()
	cmdapp.CheckOrPanic(err, "Can't init mongo")
	defer mongoSessionProvider.Close()

	roomProvider, err := mongo.NewRoomProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init room provider")

	roomClient, err := roomserver.NewClient()
	cmdapp.CheckOrPanic(err, "Can't init room server client")

	statusProvider, err := NewStatusProvider(roomProvider, roomClient)
	cmdapp.CheckOrPanic(err, "Can't init status provider")

	msgChannelProvider, err := rabbit.NewChannelProvider()
	cmdapp.CheckOrPanic(err, "Can't init rabbit channel")
	defer msgChannelProvider.Close()

	data := ServiceData{}
	data.StatusProvider = statusProvider
	data.Port = cmdapp.Config.GetInt("port")
	data.EventChannelFunc = func() (<-chan amqp.Delivery, error) {
		return initEventChannel(msgChannelProvider)
	}

	err = StartWebServer(&data)
	cmdapp.CheckOrPanic(err, "Can't start web server")
}

func initEventChannel(prv *rabbit.ChannelProvider) (<-chan amqp.Delivery, error) {
	ch, err := prv.Channel()
	if err != nil {
		return nil, err
	}
	qName := prv.QueueName(messages.StatusChanged)
	if _, err := rabbit.Declare(ch, qName); err != nil {
		return nil, err
	}
	return rabbit.NewChannel(ch, qName)
}
