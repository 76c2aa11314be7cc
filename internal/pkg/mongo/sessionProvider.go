package mongo

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//IndexData keeps index creation data
type IndexData struct {
	Table  string
	Fields []string
	Unique bool
	Sparse bool
}

func newIndexData(table string, fields []string, unique, sparse bool) IndexData {
	return IndexData{Table: table, Fields: fields, Unique: unique, Sparse: sparse}
}

//SessionProvider connects and provides client for mongo DB
type SessionProvider struct {
	client  *mongo.Client
	URL     string
	indexes []IndexData
	m       sync.Mutex // struct field mutex
}

//NewSessionProvider creates Mongo session provider
func NewSessionProvider() (*SessionProvider, error) {
	url := cmdapp.Config.GetString("mongo.url")
	if url == "" {
		return nil, errors.New("No Mongo url provided")
	}
	return &SessionProvider{URL: url, indexes: indexData}, nil
}

//Close closes mongo client
func (sp *SessionProvider) Close() {
	if sp.client != nil {
		ctx, cancel := mongoContext()
		defer cancel()
		cmdapp.LogIf(sp.client.Disconnect(ctx))
	}
}

//Client returns a connected mongo client
func (sp *SessionProvider) Client() (*mongo.Client, error) {
	sp.m.Lock()
	defer sp.m.Unlock()

	if sp.client == nil {
		cmdapp.Log.Info("Dial mongo: " + hidePass(sp.URL))
		ctx, cancel := mongoContext()
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(sp.URL))
		if err != nil {
			return nil, errors.Wrap(err, "Can't dial to mongo")
		}
		err = checkIndexes(client, sp.indexes)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create indexes")
		}
		sp.client = client
	}
	return sp.client, nil
}

//Healthy checks the mongo connection
func (sp *SessionProvider) Healthy() error {
	client, err := sp.Client()
	if err != nil {
		return err
	}
	ctx, cancel := mongoContext()
	defer cancel()
	return client.Ping(ctx, nil)
}

func checkIndexes(client *mongo.Client, indexes []IndexData) error {
	for _, index := range indexes {
		err := checkIndex(client, index)
		if err != nil {
			return errors.Wrapf(err, "Can't create index: %s:%v", index.Table, index.Fields)
		}
	}
	return nil
}

func checkIndex(client *mongo.Client, indexData IndexData) error {
	ctx, cancel := mongoContext()
	defer cancel()
	c := client.Database(store).Collection(indexData.Table)
	keys := bson.D{}
	for _, f := range indexData.Fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(indexData.Unique).SetSparse(indexData.Sparse).SetBackground(true),
	})
	return err
}

func mongoContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func newColl(sp *SessionProvider, table string) (*mongo.Collection, context.Context, context.CancelFunc, error) {
	client, err := sp.Client()
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := mongoContext()
	return client.Database(store).Collection(table), ctx, cancel, nil
}

func hidePass(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		cmdapp.Log.Warn("Can't parse mongo url.")
		return ""
	}
	_, ps := u.User.Password()
	if ps {
		u.User = url.UserPassword(u.User.Username(), "----")
	}
	return u.String()
}
