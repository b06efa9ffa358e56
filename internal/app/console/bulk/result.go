// internal/app/console/bulk/result.go
package bulk

import (
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/system/mailer"
)

// Kind names a bulk operation.
type Kind string

const (
	KindDelete       Kind = "delete"
	KindSetStatus    Kind = "set_status"
	KindComposeEmail Kind = "compose_email"
)

// Operation is one bulk action with its arguments.
type Operation struct {
	Kind    Kind
	Value   string // set_status
	Subject string // compose_email
	Body    string // compose_email
}

func Delete() Operation { return Operation{Kind: KindDelete} }

func SetStatus(value string) Operation { return Operation{Kind: KindSetStatus, Value: value} }

func ComposeEmail(subject, body string) Operation {
	return Operation{Kind: KindComposeEmail, Subject: subject, Body: body}
}

// Request is a bulk operation over a selection. IDs are in selection order.
// Records are the selected records as last seen by the console; compose
// reads recipients from them.
type Request struct {
	Resource resource.Name
	IDs      []string
	Records  []gateway.Record
	Op       Operation
}

// Failure is one record the operation could not be applied to.
type Failure struct {
	ID      string       `json:"id"`
	Kind    gateway.Kind `json:"kind"`
	Message string       `json:"error"`
	Err     error        `json:"-"`
}

func failure(id string, err error) Failure {
	return Failure{ID: id, Kind: gateway.KindOf(err), Message: gateway.Message(err), Err: err}
}

// Result aggregates per-record outcomes. Succeeded and Failed keep
// selection order.
type Result struct {
	ID        string        `json:"id"`
	Resource  resource.Name `json:"resource"`
	Op        Kind          `json:"op"`
	Attempted int           `json:"attempted"`
	Succeeded []string      `json:"succeeded"`
	Failed    []Failure     `json:"failed"`

	// Refreshed is set when the follow-up refresh completed.
	Refreshed    bool   `json:"refreshed"`
	RefreshError string `json:"refresh_error,omitempty"`

	Handoff *mailer.Handoff `json:"handoff,omitempty"`
}

// AllFailed reports a batch where nothing succeeded.
func (r Result) AllFailed() bool {
	return r.Attempted > 0 && len(r.Succeeded) == 0
}

// Partial reports a batch with both successes and failures.
func (r Result) Partial() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}
