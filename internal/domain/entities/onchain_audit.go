package entities

import "time"

// Audit fields compared between the service and the deployed contract
const (
	AuditFieldOwner      = "owner"
	AuditFieldPaused     = "paused"
	AuditFieldBalance    = "balance"
	AuditFieldRegistered = "isRegistered"
	AuditFieldName       = "name"
	AuditFieldAmount     = "amount"
	AuditFieldHasClaimed = "hasClaimed"
)

// AuditMismatch is one value that differs between service and chain
type AuditMismatch struct {
	Field   string `json:"field"`
	Address string `json:"address,omitempty"`
	Service string `json:"service"`
	Onchain string `json:"onchain"`
}

// OnchainAuditReport compares the registry with a deployed contract
type OnchainAuditReport struct {
	Contract        string          `json:"contract"`
	ChainID         string          `json:"chainId"`
	CheckedAt       time.Time       `json:"checkedAt"`
	StudentsChecked int             `json:"studentsChecked"`
	InSync          bool            `json:"inSync"`
	Mismatches      []AuditMismatch `json:"mismatches"`
}

// Add records one mismatch
func (r *OnchainAuditReport) Add(field, address, service, onchain string) {
	r.Mismatches = append(r.Mismatches, AuditMismatch{Field: field, Address: address, Service: service, Onchain: onchain})
}
