package entities

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// FundEventType names a registry notification
type FundEventType string

const (
	EventStudentAdded         FundEventType = "StudentAdded"
	EventStudentRemoved       FundEventType = "StudentRemoved"
	EventScholarshipClaimed   FundEventType = "ScholarshipClaimed"
	EventFundDeposited        FundEventType = "FundDeposited"
	EventWithdrawalMade       FundEventType = "WithdrawalMade"
	EventAmountUpdated        FundEventType = "AmountUpdated"
	EventPaused               FundEventType = "Paused"
	EventUnpaused             FundEventType = "Unpaused"
	EventOwnershipTransferred FundEventType = "OwnershipTransferred"
)

// Valid reports whether t is a known event type
func (t FundEventType) Valid() bool {
	switch t {
	case EventStudentAdded, EventStudentRemoved, EventScholarshipClaimed, EventFundDeposited,
		EventWithdrawalMade, EventAmountUpdated, EventPaused, EventUnpaused, EventOwnershipTransferred:
		return true
	}
	return false
}

// FundEvent is one emitted notification. Sequence is assigned when persisted.
type FundEvent struct {
	ID           uuid.UUID
	Sequence     int64
	Type         FundEventType
	Address      common.Address
	Name         string
	Amount       *big.Int
	Counterparty common.Address
	TxHash       null.String
	CreatedAt    time.Time
}

// EventPayload is the JSON body stored alongside an event row and sent on the bus
type EventPayload struct {
	Name         string `json:"name,omitempty"`
	Amount       string `json:"amount,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
}

// Payload extracts the variable part of the event
func (e *FundEvent) Payload() EventPayload {
	p := EventPayload{Name: e.Name}
	if e.Amount != nil {
		p.Amount = e.Amount.String()
	}
	if e.Counterparty != (common.Address{}) {
		p.Counterparty = e.Counterparty.Hex()
	}
	return p
}

// ApplyPayload fills the variable part from a stored payload
func (e *FundEvent) ApplyPayload(p EventPayload) {
	e.Name = p.Name
	if p.Amount != "" {
		if v, ok := new(big.Int).SetString(p.Amount, 10); ok {
			e.Amount = v
		}
	}
	if p.Counterparty != "" {
		e.Counterparty = common.HexToAddress(p.Counterparty)
	}
}

type fundEventJSON struct {
	ID           uuid.UUID     `json:"id"`
	Sequence     int64         `json:"sequence"`
	Type         FundEventType `json:"type"`
	Address      string        `json:"address"`
	Name         string        `json:"name,omitempty"`
	Amount       string        `json:"amount,omitempty"`
	Counterparty string        `json:"counterparty,omitempty"`
	TxHash       null.String   `json:"txHash"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func (e FundEvent) MarshalJSON() ([]byte, error) {
	p := e.Payload()
	return json.Marshal(fundEventJSON{
		ID:           e.ID,
		Sequence:     e.Sequence,
		Type:         e.Type,
		Address:      e.Address.Hex(),
		Name:         p.Name,
		Amount:       p.Amount,
		Counterparty: p.Counterparty,
		TxHash:       e.TxHash,
		CreatedAt:    e.CreatedAt,
	})
}

func (e *FundEvent) UnmarshalJSON(data []byte) error {
	var raw fundEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = FundEvent{
		ID:        raw.ID,
		Sequence:  raw.Sequence,
		Type:      raw.Type,
		Address:   common.HexToAddress(raw.Address),
		TxHash:    raw.TxHash,
		CreatedAt: raw.CreatedAt,
	}
	e.ApplyPayload(EventPayload{Name: raw.Name, Amount: raw.Amount, Counterparty: raw.Counterparty})
	return nil
}

// FundEventFilter narrows an event listing
type FundEventFilter struct {
	Type    FundEventType
	Address *common.Address
}
