package rmq

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/peter-xbs/FSM/logger"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type Config struct {
	Host                    string `envconfig:"MDL_COMN_RMQ_HOST" required:"true"`
	Port                    int    `envconfig:"MDL_COMN_RMQ_PORT" required:"true"`
	Username                string `envconfig:"MDL_COMN_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"MDL_COMN_RMQ_PASSWORD" required:"true"`
	VHost                   string `envconfig:"MDL_COMN_RMQ_VHOST" default:"/"`
	Exchange                string `envconfig:"MDL_COMN_RMQ_DEFAULT_EXCHANGE" default:"relex-default-exchange"`
	MaxParallelRequestCount int    `envconfig:"RELEX_MQ_MAX_PARALLEL_REQUESTS" default:"5"`
	RelexTaskQueue          string `envconfig:"MDL_COMN_RELEX_TASK_QUEUE" required:"true"`
	SequencerTaskQueue      string `envconfig:"MDL_COMN_SEQUENCER_TASK_QUEUE" required:"true"`
}

type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	relexLogger    *zerolog.Logger
}

func ReadConfig() (Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	return config, err
}

func NewClient() (*Client, error) {
	relexLogger := logger.NewLogger("RMQ client")
	config, err := ReadConfig()
	if err != nil {
		relexLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	url := config.URL()
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed response connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("failed request connection: %w", err)
	}

	deliveries, err := consume(reqChannel, config)
	if err != nil {
		_ = respConn.Close()
		_ = reqConn.Close()
		return nil, err
	}
	relexLogger.Info().
		Str("queue", config.RelexTaskQueue).
		Int("prefetch", config.MaxParallelRequestCount).
		Msg("Consuming relation extraction tasks")

	return &Client{
		Deliveries:     deliveries,
		ReqChanErrors:  reqChannel.NotifyClose(make(chan *amqp.Error)),
		RespChanErrors: respChannel.NotifyClose(make(chan *amqp.Error)),
		config:         config,
		reqConn:        reqConn,
		respConn:       respConn,
		respChannel:    respChannel,
		relexLogger:    &relexLogger,
	}, nil
}

func consume(channel *amqp.Channel, config Config) (<-chan amqp.Delivery, error) {
	q, err := channel.QueueDeclarePassive(
		config.RelexTaskQueue, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("queue %s: %w", config.RelexTaskQueue, err)
	}
	if err := channel.QueueBind(
		config.RelexTaskQueue,
		config.RelexTaskQueue,
		config.Exchange,
		false,
		nil); err != nil {
		return nil, fmt.Errorf("bind %s: %w", config.RelexTaskQueue, err)
	}
	if err := channel.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}

	deliveries, err := channel.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	return deliveries, nil
}

func (c *Client) SendMessageToSequencer(msg amqp.Publishing) error {
	c.relexLogger.Debug().Str("queue", c.config.SequencerTaskQueue).Msg("Publishing message to sequencer")
	return c.respChannel.Publish(
		c.config.Exchange,
		c.config.SequencerTaskQueue,
		false,
		false,
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func (config Config) URL() string {
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     config.Host,
		Username: config.Username,
		Password: config.Password,
		Port:     config.Port,
		Vhost:    config.VHost,
	}
	return uri.String()
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
