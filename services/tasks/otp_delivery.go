package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeOTPDeliver = "otp:deliver"

// OTPDeliveryPayload is the queued delivery request for one issued code.
type OTPDeliveryPayload struct {
	ReservationID string `json:"reservationId"`
	Contact       string `json:"contact"`
	Code          string `json:"code"`
}

// NewOTPDeliveryTask builds the asynq task for an issued code.
func NewOTPDeliveryTask(payload OTPDeliveryPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOTPDeliver, b), nil
}

// QueueDispatcher enqueues delivery tasks so the booking path never waits on
// the SMS gateway.
type QueueDispatcher struct {
	Client *asynq.Client
}

func NewQueueDispatcher(client *asynq.Client) *QueueDispatcher {
	return &QueueDispatcher{Client: client}
}

func (d *QueueDispatcher) DispatchOTP(ctx context.Context, reservationID, contact, code string) error {
	task, err := NewOTPDeliveryTask(OTPDeliveryPayload{
		ReservationID: reservationID,
		Contact:       contact,
		Code:          code,
	})
	if err != nil {
		return err
	}
	_, err = d.Client.EnqueueContext(ctx, task)
	return err
}
