package usecase

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/bwmarrin/discordgo"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/dealevent"
	"github.com/x-xyz/dealexchange/service/redis"
)

type archiveSink struct {
	repo dealevent.Repo
}

// NewArchiveSink stores every outcome in repo
func NewArchiveSink(repo dealevent.Repo) dealevent.Sink {
	return &archiveSink{repo}
}

func (s *archiveSink) Name() string { return "archive" }

func (s *archiveSink) Deal(c ctx.Ctx, record *dealevent.DealRecord) error {
	return s.repo.InsertDeal(c, record)
}

func (s *archiveSink) Claim(c ctx.Ctx, record *dealevent.ClaimRecord) error {
	return s.repo.InsertClaim(c, record)
}

type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type redisSink struct {
	redis   redis.Service
	channel string
}

// NewRedisSink publishes outcomes as JSON on channel
func NewRedisSink(r redis.Service, channel string) dealevent.Sink {
	return &redisSink{r, channel}
}

func (s *redisSink) Name() string { return "redis" }

func (s *redisSink) publish(c ctx.Ctx, typ string, data interface{}) error {
	msg, err := json.Marshal(envelope{Type: typ, Data: data})
	if err != nil {
		return err
	}
	_, err = s.redis.Publish(c, s.channel, msg)
	return err
}

func (s *redisSink) Deal(c ctx.Ctx, record *dealevent.DealRecord) error {
	return s.publish(c, "deal", record)
}

func (s *redisSink) Claim(c ctx.Ctx, record *dealevent.ClaimRecord) error {
	return s.publish(c, "claim", record)
}

// Messenger is the part of *discordgo.Session the notifier posts through
type Messenger interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

const defaultDecimals = 18

type discordSink struct {
	discord   Messenger
	channelId string
	decimals  map[domain.Address]int32
}

// NewDiscordSink posts delivered settlements to a discord channel. decimals
// maps payment tokens to their decimals, unknown tokens use 18.
func NewDiscordSink(discord Messenger, channelId string, decimals map[common.Address]int32) dealevent.Sink {
	d := make(map[domain.Address]int32, len(decimals))
	for token, n := range decimals {
		d[domain.FromCommon(token)] = n
	}
	return &discordSink{discord, channelId, d}
}

func (s *discordSink) Name() string { return "discord" }

func (s *discordSink) format(token domain.Address, amount string) string {
	n, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return amount
	}
	decimals, ok := s.decimals[token.ToLower()]
	if !ok {
		decimals = defaultDecimals
	}
	return decimal.NewFromBigInt(n, -decimals).String()
}

func (s *discordSink) Deal(c ctx.Ctx, record *dealevent.DealRecord) error {
	// inert auctions moved nothing
	if !record.ProcessRes {
		return nil
	}

	msg := &discordgo.MessageEmbed{
		Title:       "Item sold!",
		Description: fmt.Sprintf("%s #%s x%s", record.NftToken, record.TokenId, record.Quantity),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Seller", Value: string(record.Maker)},
			{Name: "Buyer", Value: string(record.Taker)},
			{Name: "Sale", Value: record.SaleType},
			{Name: "Price", Value: fmt.Sprintf("%s (%s)", s.format(record.PaymentToken, record.DealAmount), record.PaymentToken)},
			{Name: "Deal", Value: record.DealHash},
		},
	}

	if _, err := s.discord.ChannelMessageSendEmbed(s.channelId, msg); err != nil {
		return err
	}
	return nil
}

func (s *discordSink) Claim(c ctx.Ctx, record *dealevent.ClaimRecord) error {
	return nil
}
