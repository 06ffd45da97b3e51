package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"scholarship-fund.backend/internal/infrastructure/models"
	"scholarship-fund.backend/internal/infrastructure/repositories"
	"scholarship-fund.backend/internal/interfaces/http/middleware"
	"scholarship-fund.backend/internal/usecases"
	"scholarship-fund.backend/pkg/validation"
)

var (
	ownerAddr    = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	annAddr      = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bobAddr      = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	strangerAddr = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
)

// testCallerHeader stands in for the auth middleware in handler tests
const testCallerHeader = "X-Test-Caller"

type handlerFixture struct {
	db         *gorm.DB
	registry   *usecases.RegistryUsecase
	transferer *usecases.LedgerTransferer
	eventRepo  *repositories.FundEventRepository
	router     *gin.Engine
}

func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(testCallerHeader); raw != "" {
			c.Set(middleware.CallerKey, common.HexToAddress(raw))
		}
		c.Next()
	}
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.RegisterBindingValidators()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	eventRepo := repositories.NewFundEventRepository(db)
	transferer := usecases.NewLedgerTransferer(repositories.NewPayoutAccountRepository(db))
	registry := usecases.NewRegistryUsecase(
		repositories.NewUnitOfWork(db),
		repositories.NewRegistryStateRepository(db),
		repositories.NewStudentRepository(db),
		eventRepo,
		transferer,
		nil,
		nil,
	)
	_, err = registry.EnsureInitialized(context.Background(), ownerAddr)
	require.NoError(t, err)

	h := NewRegistryHandler(registry, transferer)
	r := gin.New()
	api := r.Group("/api/v1", fakeAuth())
	api.GET("/registry", h.GetSummary)
	api.GET("/registry/owner", h.GetOwner)
	api.GET("/registry/paused", h.GetPaused)
	api.GET("/registry/balance", h.GetBalance)
	api.GET("/students", h.ListStudents)
	api.GET("/students/all", h.ListAllStudents)
	api.GET("/students/:address", h.GetStudent)
	api.GET("/accounts/:address", h.GetAccount)
	api.POST("/deposits", h.Deposit)
	api.POST("/claims", h.Claim)
	admin := api.Group("/admin")
	admin.POST("/students", h.AddStudent)
	admin.POST("/students/bulk", h.BulkAddStudents)
	admin.POST("/students/import", h.ImportRoster)
	admin.GET("/students/export", h.ExportRoster)
	admin.PUT("/students/:address/amount", h.UpdateStudentAmount)
	admin.DELETE("/students/:address", h.RemoveStudent)
	admin.POST("/withdrawals", h.Withdraw)
	admin.POST("/pause", h.Pause)
	admin.POST("/unpause", h.Unpause)
	admin.POST("/ownership", h.TransferOwnership)

	return &handlerFixture{db: db, registry: registry, transferer: transferer, eventRepo: eventRepo, router: r}
}

func (f *handlerFixture) do(method, path string, caller *common.Address, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		req.Header.Set(testCallerHeader, caller.Hex())
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
