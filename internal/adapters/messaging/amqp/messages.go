package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
)

// EmailJob is the queued unit of work for the notification worker. The
// template payload is kept raw on the wire and decoded by Kind.
type EmailJob struct {
	Notification domain.Notification `json:"notification"`
	Kind         domain.EmailKind    `json:"kind"`
	Payload      json.RawMessage     `json:"payload"`
	Timestamp    time.Time           `json:"timestamp"`

	template domain.EmailTemplate
}

// NewEmailJob wraps a notification and its e-mail template.
func NewEmailJob(n domain.Notification, tmpl domain.EmailTemplate) (*EmailJob, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("email job for notification %s has no template", n.NotificationID)
	}
	payload, err := json.Marshal(tmpl)
	if err != nil {
		return nil, fmt.Errorf("marshal %s template: %w", tmpl.Kind(), err)
	}
	return &EmailJob{
		Notification: n,
		Kind:         tmpl.Kind(),
		Payload:      payload,
		Timestamp:    time.Now(),
		template:     tmpl,
	}, nil
}

// Template returns the decoded e-mail template.
func (j *EmailJob) Template() domain.EmailTemplate {
	return j.template
}

// ToJSON converts the job to JSON bytes
func (j *EmailJob) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// EmailJobFromJSON decodes a job and its template variant.
func EmailJobFromJSON(data []byte) (*EmailJob, error) {
	var job EmailJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	tmpl, err := decodeTemplate(job.Kind, job.Payload)
	if err != nil {
		return nil, err
	}
	job.template = tmpl
	return &job, nil
}

func decodeTemplate(kind domain.EmailKind, payload json.RawMessage) (domain.EmailTemplate, error) {
	switch kind {
	case domain.EmailBudget:
		var t domain.BudgetEmail
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return t, nil
	case domain.EmailTransaction:
		var t domain.TransactionEmail
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return t, nil
	case domain.EmailBill:
		var t domain.BillEmail
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return t, nil
	case domain.EmailGeneral:
		var t domain.GeneralEmail
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown email kind %q", kind)
	}
}
