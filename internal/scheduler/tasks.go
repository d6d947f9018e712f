package scheduler

import (
	"encoding/json"

	"couvreur_backend/internal/leads/domain"

	"github.com/hibiken/asynq"
)

const TaskLeadNotify = "leads.notify"

// LeadNotifyPayload carries the estimate as computed at submission time.
// The lead itself is reloaded by the worker.
type LeadNotifyPayload struct {
	LeadID   string          `json:"leadId"`
	Estimate domain.Estimate `json:"estimate"`
}

func NewLeadNotifyTask(payload LeadNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadNotify, data), nil
}

func ParseLeadNotifyPayload(task *asynq.Task) (LeadNotifyPayload, error) {
	var payload LeadNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadNotifyPayload{}, err
	}
	return payload, nil
}
