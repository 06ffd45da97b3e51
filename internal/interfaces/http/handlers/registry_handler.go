package handlers

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"scholarship-fund.backend/internal/domain/entities"
	"scholarship-fund.backend/internal/interfaces/http/response"
	"scholarship-fund.backend/internal/usecases"
	"scholarship-fund.backend/pkg/utils"
)

// RegistryHandler exposes the scholarship registry
type RegistryHandler struct {
	registry   *usecases.RegistryUsecase
	transferer *usecases.LedgerTransferer
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(registry *usecases.RegistryUsecase, transferer *usecases.LedgerTransferer) *RegistryHandler {
	return &RegistryHandler{registry: registry, transferer: transferer}
}

// GetSummary returns owner, pause flag, balance and student count
// GET /api/v1/registry
func (h *RegistryHandler) GetSummary(c *gin.Context) {
	summary, err := h.registry.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// GetOwner GET /api/v1/registry/owner
func (h *RegistryHandler) GetOwner(c *gin.Context) {
	owner, err := h.registry.Owner(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"owner": owner.Hex()})
}

// GetPaused GET /api/v1/registry/paused
func (h *RegistryHandler) GetPaused(c *gin.Context) {
	paused, err := h.registry.Paused(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paused": paused})
}

// GetBalance GET /api/v1/registry/balance
func (h *RegistryHandler) GetBalance(c *gin.Context) {
	balance, err := h.registry.GetContractBalance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"balance": entities.AmountString(balance)})
}

// ListStudents returns a window of the registration order
// GET /api/v1/students?offset=&limit=
func (h *RegistryHandler) ListStudents(c *gin.Context) {
	offset, err := queryInt64(c, "offset", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt64(c, "limit", utils.DefaultPageLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := h.registry.GetStudents(c.Request.Context(), offset, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// ListAllStudents GET /api/v1/students/all
func (h *RegistryHandler) ListAllStudents(c *gin.Context) {
	students, err := h.registry.GetAllStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": students})
}

// GetStudent returns the record for an address; unknown addresses come back unregistered
// GET /api/v1/students/:address
func (h *RegistryHandler) GetStudent(c *gin.Context) {
	address, err := parseAddress("address", c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.registry.GetStudent(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// GetAccount returns the external balance credited by claims and withdrawals
// GET /api/v1/accounts/:address
func (h *RegistryHandler) GetAccount(c *gin.Context) {
	address, err := parseAddress("address", c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	account, err := h.transferer.Account(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, account)
}

// Deposit adds value to the pool
// POST /api/v1/deposits
func (h *RegistryHandler) Deposit(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input entities.DepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.registry.DepositFunds(c.Request.Context(), caller, amount, input.TxHash)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"depositor": caller.Hex(),
		"amount":    amount.String(),
		"balance":   balance.String(),
	})
}

// Claim pays the caller's allocation
// POST /api/v1/claims
func (h *RegistryHandler) Claim(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	student, err := h.registry.ClaimScholarship(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// AddStudent POST /api/v1/admin/students
func (h *RegistryHandler) AddStudent(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input entities.AddStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}
	address, err := parseAddress("address", input.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	student, err := h.registry.AddStudent(c.Request.Context(), caller, input.Name, address, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, student)
}

// BulkAddStudents registers parallel lists in one call
// POST /api/v1/admin/students/bulk
func (h *RegistryHandler) BulkAddStudents(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input entities.BulkAddStudentsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}
	h.bulkAdd(c, caller, &input)
}

func (h *RegistryHandler) bulkAdd(c *gin.Context, caller common.Address, input *entities.BulkAddStudentsInput) {
	addresses := make([]common.Address, 0, len(input.Addresses))
	for _, raw := range input.Addresses {
		a, err := parseAddress("addresses", raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		addresses = append(addresses, a)
	}
	amounts := make([]*big.Int, 0, len(input.Amounts))
	for _, raw := range input.Amounts {
		v, err := parseAmount("amounts", raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		amounts = append(amounts, v)
	}

	students, err := h.registry.BulkAddStudents(c.Request.Context(), caller, input.Names, addresses, amounts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"items": students, "count": len(students)})
}

// UpdateStudentAmount PUT /api/v1/admin/students/:address/amount
func (h *RegistryHandler) UpdateStudentAmount(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	address, err := parseAddress("address", c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.UpdateAmountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	student, err := h.registry.UpdateStudentAmount(c.Request.Context(), caller, address, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// RemoveStudent DELETE /api/v1/admin/students/:address
func (h *RegistryHandler) RemoveStudent(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	address, err := parseAddress("address", c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.registry.RemoveStudent(c.Request.Context(), caller, address); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Withdraw sends the whole pool to the owner
// POST /api/v1/admin/withdrawals
func (h *RegistryHandler) Withdraw(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	amount, err := h.registry.WithdrawFunds(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"owner": caller.Hex(), "amount": amount.String()})
}

// Pause POST /api/v1/admin/pause
func (h *RegistryHandler) Pause(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	if err := h.registry.Pause(c.Request.Context(), caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paused": true})
}

// Unpause POST /api/v1/admin/unpause
func (h *RegistryHandler) Unpause(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	if err := h.registry.Unpause(c.Request.Context(), caller); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paused": false})
}

// TransferOwnership POST /api/v1/admin/ownership
func (h *RegistryHandler) TransferOwnership(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var input entities.TransferOwnershipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ValidationError(c, err)
		return
	}
	newOwner, err := parseAddress("newOwner", input.NewOwner)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.registry.TransferOwnership(c.Request.Context(), caller, newOwner); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"previousOwner": caller.Hex(), "newOwner": newOwner.Hex()})
}
