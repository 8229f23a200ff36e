package worker

import (
	"encoding/json"
	"time"

	"github.com/peter-xbs/FSM/rmq"
	"github.com/peter-xbs/FSM/tasks"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type rmqTransactions interface {
	pingSequencer(task *Task, message Message) error
	acknowledgeDelivery(delivery *amqp.Delivery) error
	rejectDelivery(delivery *amqp.Delivery, relexLogger *zerolog.Logger)
	getDeliveriesCh() <-chan amqp.Delivery
	getReqChanErrorsCh() <-chan *amqp.Error
	getRespChanErrorsCh() <-chan *amqp.Error
	close()
}

type rmqClientWrapper struct {
	rmqClient *rmq.Client
}

func (wrapper *rmqClientWrapper) close() {
	wrapper.rmqClient.Close()
}

func (wrapper *rmqClientWrapper) getDeliveriesCh() <-chan amqp.Delivery {
	return wrapper.rmqClient.Deliveries
}

func (wrapper *rmqClientWrapper) getReqChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.ReqChanErrors
}

func (wrapper *rmqClientWrapper) getRespChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.RespChanErrors
}

func (wrapper *rmqClientWrapper) pingSequencer(task *Task, message Message) error {
	publishing, err := sequencerPublishing(task, message)
	if err != nil {
		return err
	}
	return wrapper.rmqClient.SendMessageToSequencer(publishing)
}

// sequencerPublishing reports the finished chunk back under the relex sender.
func sequencerPublishing(task *Task, message Message) (amqp.Publishing, error) {
	message.Sender = tasks.RelexTaskName
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, err
	}
	contentType := task.delivery.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	return amqp.Publishing{
		ContentType:   contentType,
		CorrelationId: task.delivery.CorrelationId,
		MessageId:     task.redisKey,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	}, nil
}

func (wrapper *rmqClientWrapper) acknowledgeDelivery(delivery *amqp.Delivery) error {
	return delivery.Ack(false)
}

// rejectDelivery requeues a delivery once; a redelivered message is dropped.
func (wrapper *rmqClientWrapper) rejectDelivery(delivery *amqp.Delivery, relexLogger *zerolog.Logger) {
	requeue := !delivery.Redelivered
	relexLogger.Info().Bool("requeue", requeue).Msg("Rejecting delivery")
	if err := delivery.Reject(requeue); err != nil {
		relexLogger.Err(err).Bool("requeue", requeue).Msg("Failed to reject delivery")
	}
}
