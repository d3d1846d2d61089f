package mongoclient

import (
	"context"
	"crypto/tls"
	"runtime"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/x-xyz/dealexchange/base/log"
)

const (
	mgSocketTimeout      = 60 * time.Second
	mgSelectServerTimout = 5 * time.Second
	mgConnectTimeout     = 10 * time.Second
	minPoolSize          = 4
)

// Client wraps mongo.Client with the database the repositories live in
type Client struct {
	DbName string
	*mongo.Client
}

// Config of one mongo deployment
type Config struct {
	URI string
	// AuthDBName is used when the uri carries credentials but no authSource
	AuthDBName string
	DbName     string
	SSL        bool
	// SetSafe waits for a majority on writes and reads majority committed
	// data, which settlement transactions rely on
	SetSafe            bool
	PoolSizeMultiplier float64
}

// MustConnect is Connect panicking on failure
func MustConnect(cfg Config) *Client {
	cli, err := Connect(cfg)
	if err != nil {
		log.Log().WithFields(log.Fields{"dbName": cfg.DbName, "err": err}).Panic("fail to dial Mongo")
	}
	return cli
}

// poolSize splits the process wide pool budget among the hosts, every host
// gets a pool of its own
func poolSize(cpu int, multiplier float64, hosts int) (min, max uint64) {
	total := int(float64(cpu) * multiplier)
	if total < minPoolSize {
		total = minPoolSize
	}
	if hosts < 1 {
		hosts = 1
	}
	perHost := (total + hosts - 1) / hosts
	return uint64(perHost / 4), uint64(perHost)
}

// Connect dials cfg.URI and checks cfg.DbName is readable
func Connect(cfg Config) (*Client, error) {
	logger := log.Log().WithField("dbName", cfg.DbName)
	connSetting, err := connstring.Parse(cfg.URI)
	if err != nil {
		logger.WithField("err", err).Error("fail to parse connstring")
		return nil, err
	}
	logger = logger.WithField("mongoHosts", connSetting.Hosts)

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetSocketTimeout(mgSocketTimeout).
		SetServerSelectionTimeout(mgSelectServerTimout).
		SetRetryWrites(true)

	if connSetting.Username != "" && connSetting.AuthSource == "" {
		clientOpts.SetAuth(options.Credential{
			AuthMechanism:           connSetting.AuthMechanism,
			AuthMechanismProperties: connSetting.AuthMechanismProperties,
			Username:                connSetting.Username,
			Password:                connSetting.Password,
			PasswordSet:             connSetting.PasswordSet,
			AuthSource:              cfg.AuthDBName,
		})
	}

	minSize, maxSize := poolSize(runtime.NumCPU(), cfg.PoolSizeMultiplier, len(connSetting.Hosts))
	clientOpts.SetMinPoolSize(minSize).SetMaxPoolSize(maxSize)
	logger.WithField("poolSize", maxSize).Info("mongo driver pool size")

	if cfg.SSL {
		clientOpts.SetTLSConfig(&tls.Config{})
	}
	if cfg.SetSafe {
		clientOpts.SetWriteConcern(writeconcern.New(writeconcern.WMajority()))
		clientOpts.SetReadConcern(readconcern.Majority())
	}

	c, cancel := context.WithTimeout(context.Background(), mgConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(c, clientOpts)
	if err != nil {
		logger.WithField("err", err).Error("fail to connect mongo db")
		return nil, err
	}

	if _, err := client.Database(cfg.DbName).ListCollectionNames(c, bson.D{}); err != nil {
		logger.WithField("err", err).Error("fail to test mongo db")
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("mongo connected")
	return &Client{
		Client: client,
		DbName: cfg.DbName,
	}, nil
}
