package notify

import (
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/rolevate/roomgo/internal/pkg/mongo"
	"github.com/rolevate/roomgo/internal/pkg/rabbit"
	"github.com/rolevate/roomgo/internal/pkg/utils"
	"github.com/rolevate/roomgo/internal/pkg/whatsapp"
)

var appName = "Interview Notification Service"

var rootCmd = &cobra.Command{
	Use:   "notifyService",
	Short: appName,
	Long:  `Service listens for session end events and sends the post-session message to the candidate`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	cmdapp.Config.SetDefault("whatsapp.template", "interview_thank_you")
	cmdapp.Config.SetDefault("whatsapp.language", "en")
}

//Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	data := ServiceData{}
	data.fc = utils.NewSignalChannel()

	msgChannelProvider, err := rabbit.NewChannelProvider()
	cmdapp.CheckOrPanic(err, "Can't init rabbit channel")
	defer msgChannelProvider.Close()

	ch, err := msgChannelProvider.Channel()
	cmdapp.CheckOrPanic(err, "Can't open channel")
	err = ch.Qos(1, 0, false)
	cmdapp.CheckOrPanic(err, "Can't set Qos")

	qName := msgChannelProvider.QueueName(messages.SessionEnded)
	_, err = rabbit.Declare(ch, qName)
	cmdapp.CheckOrPanic(err, "Can't declare queue "+qName)
	data.workCh, err = rabbit.NewChannel(ch, qName)
	cmdapp.CheckOrPanic(err, "Can't listen to "+qName+" channel")

	tokenCache, err := whatsapp.NewStaticTokenCache(cmdapp.Config.GetString("whatsapp.token"))
	cmdapp.CheckOrPanic(err, "Can't init token cache")
	data.sender, err = whatsapp.NewClient(tokenCache)
	cmdapp.CheckOrPanic(err, "Can't init whatsapp client")

	data.template = cmdapp.Config.GetString("whatsapp.template")
	data.language = cmdapp.Config.GetString("whatsapp.language")

	mongoSessionProvider, err := mongo.NewSessionProvider()
	cmdapp.CheckOrPanic(err, "Can't init mongo provider")
	defer mongoSessionProvider.Close()

	data.locker, err = mongo.NewLocker(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init mongo locker")

	data.contacts, err = mongo.NewApplicationProvider(mongoSessionProvider)
	cmdapp.CheckOrPanic(err, "Can't init application provider")

	data.bp = &expBackOffProvider{}

	if cmdapp.Config.GetString("smtp.host") != "" {
		data.emailMaker, err = newSimpleEmailMaker()
		cmdapp.CheckOrPanic(err, "Can't init email maker")
		data.emailSender, err = newSimpleEmailSender()
		cmdapp.CheckOrPanic(err, "Can't init email sender")
	} else {
		cmdapp.Log.Info("No smtp.host configured, skipping email copies")
	}

	err = StartWorkerService(&data)
	if err != nil {
		panic(errors.Wrap(err, "Can't start worker"))
	}
	<-data.fc.C
	cmdapp.Log.Infof("Exiting service")
}

type expBackOffProvider struct {
}

func (bp *expBackOffProvider) Get() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     backoff.DefaultInitialInterval,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         backoff.DefaultMaxInterval,
		MaxElapsedTime:      45 * time.Second,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}
