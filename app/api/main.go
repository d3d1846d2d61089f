package main

import (
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/database/mongoclient"
	"github.com/x-xyz/dealexchange/base/database/redisclient"
	"github.com/x-xyz/dealexchange/base/env"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/base/metrics"
	bValidator "github.com/x-xyz/dealexchange/base/validator"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/domain/dealevent"
	"github.com/x-xyz/dealexchange/domain/keys"
	mmiddleware "github.com/x-xyz/dealexchange/middleware"
	"github.com/x-xyz/dealexchange/service/cache"
	"github.com/x-xyz/dealexchange/service/cache/provider"
	"github.com/x-xyz/dealexchange/service/cache/provider/compound"
	"github.com/x-xyz/dealexchange/service/cache/provider/primitive"
	redisProvider "github.com/x-xyz/dealexchange/service/cache/provider/redis"
	"github.com/x-xyz/dealexchange/service/ledger"
	"github.com/x-xyz/dealexchange/service/query"
	"github.com/x-xyz/dealexchange/service/redis"
	auth_delivery "github.com/x-xyz/dealexchange/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/dealexchange/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/dealexchange/stores/auth/usecase"
	controller_usecase "github.com/x-xyz/dealexchange/stores/controller/usecase"
	deal_delivery "github.com/x-xyz/dealexchange/stores/deal/delivery/http"
	deal_repository "github.com/x-xyz/dealexchange/stores/deal/repository"
	deal_usecase "github.com/x-xyz/dealexchange/stores/deal/usecase"
	event_repository "github.com/x-xyz/dealexchange/stores/dealevent/repository"
	event_usecase "github.com/x-xyz/dealexchange/stores/dealevent/usecase"
	hc_delivery "github.com/x-xyz/dealexchange/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/dealexchange/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/dealexchange/stores/healthcheck/usecase"
)

const (
	storageMemory = "memory"
	storageMongo  = "mongo"

	statusCacheTtl = 10 * time.Minute
)

func init() {
	cfgPath := pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")
	pflag.Parse()
	path := *cfgPath
	if p := env.ConfigPath(); p != "" && !pflag.CommandLine.Changed("config") {
		path = p
	}

	viper.SetConfigType("yaml")
	viper.SetConfigFile(path)
	viper.SetDefault("storage.driver", storageMemory)
	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("cache.sizeMB", 64)
	viper.SetDefault("log.level", "info")
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	log.SetLevel(viper.GetString("log.level"))
	if viper.GetBool(`debug`) {
		log.SetLevel("debug")
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func address(key string) common.Address {
	v := viper.GetString(key)
	if v == "" {
		return common.Address{}
	}
	if !common.IsHexAddress(v) {
		log.Log().WithFields(log.Fields{"key": key, "value": v}).Panic("invalid address in config")
	}
	return common.HexToAddress(v)
}

func addresses(key string) []common.Address {
	res := []common.Address{}
	for _, v := range viper.GetStringSlice(key) {
		if !common.IsHexAddress(v) {
			log.Log().WithFields(log.Fields{"key": key, "value": v}).Panic("invalid address in config")
		}
		res = append(res, common.HexToAddress(v))
	}
	return res
}

func toKind(s string) ledger.Kind {
	switch strings.ToLower(s) {
	case "erc20":
		return ledger.KindErc20
	case "erc721":
		return ledger.KindErc721
	case "erc1155":
		return ledger.KindErc1155
	}
	return ledger.KindNone
}

// deployContracts registers the token contracts listed under ledger.contracts.
// Collections default to the controller as their minter.
func deployContracts(c ctx.Ctx, l *ledger.Ledger, defaultMinter common.Address) {
	contracts := viper.Sub("ledger.contracts")
	if contracts == nil {
		return
	}
	for name := range contracts.AllSettings() {
		token := address(fmt.Sprintf("ledger.contracts.%s.address", name))
		kind := toKind(contracts.GetString(fmt.Sprintf("%s.kind", name)))
		minter := address(fmt.Sprintf("ledger.contracts.%s.minter", name))
		if minter == (common.Address{}) {
			minter = defaultMinter
		}
		if err := l.Deploy(c, token, kind, minter); err != nil {
			c.WithFields(log.Fields{"err": err, "contract": name}).Panic("ledger.Deploy failed")
		}
		c.WithFields(log.Fields{"contract": name, "address": token.Hex(), "kind": kind}).Info("contract deployed")
	}
}

// fundAccounts credits the native balances listed under ledger.deposits
func fundAccounts(c ctx.Ctx, l *ledger.Ledger) {
	for addr, amount := range viper.GetStringMapString("ledger.deposits") {
		if !common.IsHexAddress(addr) {
			c.WithField("address", addr).Panic("invalid address in ledger.deposits")
		}
		n, ok := new(big.Int).SetString(amount, 10)
		if !ok || n.Sign() < 0 {
			c.WithFields(log.Fields{"address": addr, "amount": amount}).Panic("invalid amount in ledger.deposits")
		}
		if err := l.Native().Deposit(c, common.HexToAddress(addr), n); err != nil {
			c.WithFields(log.Fields{"err": err, "address": addr}).Panic("native.Deposit failed")
		}
	}
}

func tokenDecimals() map[common.Address]int32 {
	res := make(map[common.Address]int32)
	for addr, dec := range viper.GetStringMap("events.decimals") {
		if !common.IsHexAddress(addr) {
			continue
		}
		switch d := dec.(type) {
		case int:
			res[common.HexToAddress(addr)] = int32(d)
		case float64:
			res[common.HexToAddress(addr)] = int32(d)
		}
	}
	return res
}

func main() {
	// init echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware(metrics.New("http", metrics.WithoutPodName()))
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// host ledger
	engineAddr := address("exchange.address")
	controllerAddr := address("controller.address")
	book := ledger.New()
	deployContracts(context, book, controllerAddr)
	fundAccounts(context, book)

	// storage
	var (
		mongoClient *mongoclient.Client
		transactor  deal.Transactor
		statusRepo  deal.StatusRepo
		rewardRepo  deal.RewardRepo
		eventRepo   dealevent.Repo
	)
	switch driver := viper.GetString("storage.driver"); driver {
	case storageMongo:
		context.Info("init mongo")
		mongoClient = mongoclient.MustConnect(mongoclient.Config{
			URI:                viper.GetString("mongo.uri"),
			AuthDBName:         viper.GetString("mongo.authDBName"),
			DbName:             viper.GetString("mongo.dbName"),
			SSL:                viper.GetBool("mongo.enableSSL"),
			SetSafe:            true,
			PoolSizeMultiplier: 2,
		})
		q := query.New(mongoClient, viper.GetBool("mongo.checkIndex"), metrics.New("query"))
		if err := deal_repository.EnsureIndexes(context, q); err != nil {
			context.WithField("err", err).Panic("deal indexes failed")
		}
		if err := event_repository.EnsureIndexes(context, q); err != nil {
			context.WithField("err", err).Panic("event indexes failed")
		}
		transactor = deal_repository.Chain(book, q)
		statusRepo = deal_repository.NewStatusRepo(q)
		rewardRepo = deal_repository.NewRewardRepo(q)
		eventRepo = event_repository.NewEventRepo(q)
	case storageMemory:
		transactor = deal_repository.Chain(book)
		statusRepo = deal_repository.NewMemoryStatusRepo(book)
		rewardRepo = deal_repository.NewMemoryRewardRepo(book)
	default:
		context.WithField("driver", driver).Panic("unknown storage driver")
	}

	// init Redis service, sign-in nonces live there
	context.Info("init redis")
	redisURI := viper.GetString("redis.uri")
	if redisURI == "" {
		context.Panic("redis.uri is required")
	}
	redisPool := redisclient.MustConnectRedis(redisURI, viper.GetString("redis.password"), redisclient.RedisParam{
		PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
		Retry:          true,
	})
	redisCache := redis.New("redis", metrics.New("redis"), &redis.Pools{
		Src: redisPool,
	})

	// caches
	local := primitive.NewPrimitive("local", viper.GetInt("cache.sizeMB"))
	httpCache := compound.NewCompound([]provider.Provider{local, redisProvider.NewRedis(redisCache)})
	statusCache := cache.New(cache.ServiceConfig{
		Ttl:   statusCacheTtl,
		Pfx:   keys.PfxDealStatus,
		Cache: local,
	})

	// outcome events
	sinks := []dealevent.Sink{}
	if eventRepo != nil {
		sinks = append(sinks, event_usecase.NewArchiveSink(eventRepo))
	}
	if ch := viper.GetString("events.redisChannel"); ch != "" {
		sinks = append(sinks, event_usecase.NewRedisSink(redisCache, ch))
	}
	if key := viper.GetString("events.discordBotKey"); key != "" {
		discord, err := discordgo.New("Bot " + key)
		if err != nil {
			context.WithField("err", err).Panic("discordgo.New failed")
		}
		sinks = append(sinks, event_usecase.NewDiscordSink(discord, viper.GetString("events.discordChannelId"), tokenDecimals()))
	}
	events := event_usecase.New(&event_usecase.DispatcherCfg{
		Sinks:   sinks,
		Repo:    eventRepo,
		Workers: viper.GetInt("events.workers"),
		Metrics: metrics.New("dealevent"),
	})

	// engine
	controller := controller_usecase.New(&controller_usecase.ControllerCfg{
		Address:         controllerAddr,
		FeeTo:           address("controller.feeTo"),
		ProtocolFeeBps:  viper.GetInt64("controller.protocolFeeBps"),
		OriginToken:     address("controller.originToken"),
		SupportPayments: addresses("controller.supportPayments"),
		Signers:         addresses("controller.signers"),
		Mintable:        addresses("controller.mintable"),
		Minter:          book,
	})
	engine := deal_usecase.New(&deal_usecase.DealUseCaseCfg{
		Domain: deal.Domain{
			Name:              viper.GetString("exchange.name"),
			Version:           viper.GetString("exchange.version"),
			ChainId:           big.NewInt(viper.GetInt64("exchange.chainId")),
			VerifyingContract: engineAddr,
		},
		Address:      engineAddr,
		RewardToken:  address("exchange.rewardToken"),
		Controller:   controller,
		Native:       book.Native(),
		PaymentToken: book.Erc20(),
		Erc721:       book.Erc721(),
		Erc1155:      book.Erc1155(),
		Transactor:   transactor,
		StatusRepo:   statusRepo,
		RewardRepo:   rewardRepo,
		Publisher:    events,
		StatusCache:  statusCache,
		Metrics:      metrics.New("deal"),
	})

	// auth
	auth := auth_usecase.New(&auth_usecase.AuthUseCaseCfg{
		JwtSecret:          viper.GetString("jwt.secret"),
		SigningMsgTemplate: viper.GetString("auth.signingMsgTemplate"),
		NonceTTL:           viper.GetDuration("auth.nonceTTL"),
		Redis:              redisCache,
	})
	authMiddleware := auth_middleware.New(auth)

	hc_delivery.New(e, hc_usecase.New(hc_repo.New(mongoClient, redisCache), engine))
	auth_delivery.New(e, auth, viper.GetString("auth.signingMsgTemplate"))
	deal_delivery.New(e, engine, events, authMiddleware, httpCache)

	go func() {
		if err := e.Start(viper.GetString("http.addr")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	c, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(c); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
	// drain pending event deliveries once no request can publish more
	events.Close()
	if mongoClient != nil {
		if err := mongoClient.Disconnect(c); err != nil {
			log.Log().WithField("err", err).Error("mongo disconnect failed")
		}
	}
}
