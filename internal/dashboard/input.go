package dashboard

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/abdulachik/rednotebot/internal/workflow"
)

// UpdateAccountBody reassigns one account's persona. account_id is accepted
// as an alias for account.
type UpdateAccountBody struct {
	Account   string `json:"account"`
	AccountID string `json:"account_id"`
	Persona   string `json:"persona"`
}

func (b *UpdateAccountBody) normalize() {
	if b.Account == "" {
		b.Account = b.AccountID
	}
}

func (b UpdateAccountBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Account, v.Required, is.UpperCase),
		v.Field(&b.Persona, v.Required),
	)
}

// GenerateBody triggers a batch for one account. An empty mode uses the
// configured default.
type GenerateBody struct {
	Account   string `json:"account"`
	AccountID string `json:"account_id"`
	Mode      string `json:"mode"`
}

func (b *GenerateBody) normalize() {
	if b.Account == "" {
		b.Account = b.AccountID
	}
}

func (b GenerateBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Account, v.Required, is.UpperCase),
		v.Field(&b.Mode, v.In(string(workflow.ModeSingle), string(workflow.ModeDaily))),
	)
}

// SearchQuery is the query string of a library search.
type SearchQuery struct {
	Q string `query:"q"`
	K int    `query:"k"`
}

func (q SearchQuery) Validate() error {
	return v.ValidateStruct(&q,
		v.Field(&q.Q, v.Required, v.Length(1, 500)),
		v.Field(&q.K, v.Min(0), v.Max(50)),
	)
}
