package usecases

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"scholarship-fund.backend/internal/config"
	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/infrastructure/blockchain"
	"scholarship-fund.backend/pkg/logger"
	"scholarship-fund.backend/pkg/metrics"
)

// OnchainReader is the read surface of a deployed ScholarshipFund
type OnchainReader interface {
	Owner(ctx context.Context) (common.Address, error)
	Paused(ctx context.Context) (bool, error)
	ContractBalance(ctx context.Context) (*big.Int, error)
	Student(ctx context.Context, address common.Address) (*blockchain.OnchainStudent, error)
	AllStudents(ctx context.Context) ([]blockchain.OnchainStudent, error)
}

// AuditSource is the service side of the comparison
type AuditSource interface {
	Owner(ctx context.Context) (common.Address, error)
	Paused(ctx context.Context) (bool, error)
	GetContractBalance(ctx context.Context) (*big.Int, error)
	GetAllStudents(ctx context.Context) ([]*entities.Student, error)
}

// OnchainAuditUsecase reports drift between the registry and the deployed contract
type OnchainAuditUsecase struct {
	source        AuditSource
	clientFactory *blockchain.ClientFactory
	cfg           config.BlockchainConfig
	metrics       *metrics.Metrics
	now           func() time.Time

	openReader func(ctx context.Context) (OnchainReader, string, error)
}

// NewOnchainAuditUsecase creates the audit usecase. m may be nil.
func NewOnchainAuditUsecase(source AuditSource, clientFactory *blockchain.ClientFactory, cfg config.BlockchainConfig, m *metrics.Metrics) *OnchainAuditUsecase {
	u := &OnchainAuditUsecase{
		source:        source,
		clientFactory: clientFactory,
		cfg:           cfg,
		metrics:       m,
		now:           time.Now,
	}
	u.openReader = u.dialContract
	return u
}

// Enabled reports whether an RPC endpoint and contract address are configured
func (u *OnchainAuditUsecase) Enabled() bool {
	return u.cfg.Enabled()
}

func (u *OnchainAuditUsecase) dialContract(_ context.Context) (OnchainReader, string, error) {
	if !common.IsHexAddress(u.cfg.ContractAddress) {
		return nil, "", domainerrors.NewError("contract address is not a 20-byte hex string", domainerrors.ErrInvalidInput)
	}
	contract, err := u.clientFactory.GetScholarshipContract(u.cfg.RPCURL, common.HexToAddress(u.cfg.ContractAddress))
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to rpc: %w", err)
	}
	chainID := ""
	if id := contract.ChainID(); id != nil {
		chainID = id.String()
	}
	return contract, chainID, nil
}

// Audit reads the contract and compares owner, pause flag, balance and every student
func (u *OnchainAuditUsecase) Audit(ctx context.Context) (*entities.OnchainAuditReport, error) {
	if !u.Enabled() {
		return nil, domainerrors.ErrOnchainUnavailable
	}
	reader, chainID, err := u.openReader(ctx)
	if err != nil {
		return nil, err
	}

	report := &entities.OnchainAuditReport{
		Contract:   common.HexToAddress(u.cfg.ContractAddress).Hex(),
		ChainID:    chainID,
		CheckedAt:  u.now().UTC(),
		Mismatches: []entities.AuditMismatch{},
	}
	if err := u.compareRegistry(ctx, reader, report); err != nil {
		return nil, err
	}
	if err := u.compareStudents(ctx, reader, report); err != nil {
		return nil, err
	}

	report.InSync = len(report.Mismatches) == 0
	if u.metrics != nil {
		u.metrics.SetAuditMismatches(len(report.Mismatches))
	}
	if !report.InSync {
		logger.Warn(ctx, "On-chain audit found drift",
			zap.String("contract", report.Contract),
			zap.Int("mismatches", len(report.Mismatches)))
	}
	return report, nil
}

func (u *OnchainAuditUsecase) compareRegistry(ctx context.Context, reader OnchainReader, report *entities.OnchainAuditReport) error {
	owner, err := u.source.Owner(ctx)
	if err != nil {
		return err
	}
	chainOwner, err := reader.Owner(ctx)
	if err != nil {
		return err
	}
	if owner != chainOwner {
		report.Add(entities.AuditFieldOwner, "", owner.Hex(), chainOwner.Hex())
	}

	paused, err := u.source.Paused(ctx)
	if err != nil {
		return err
	}
	chainPaused, err := reader.Paused(ctx)
	if err != nil {
		return err
	}
	if paused != chainPaused {
		report.Add(entities.AuditFieldPaused, "", strconv.FormatBool(paused), strconv.FormatBool(chainPaused))
	}

	balance, err := u.source.GetContractBalance(ctx)
	if err != nil {
		return err
	}
	chainBalance, err := reader.ContractBalance(ctx)
	if err != nil {
		return err
	}
	if entities.AmountString(balance) != entities.AmountString(chainBalance) {
		report.Add(entities.AuditFieldBalance, "", entities.AmountString(balance), entities.AmountString(chainBalance))
	}
	return nil
}

func (u *OnchainAuditUsecase) compareStudents(ctx context.Context, reader OnchainReader, report *entities.OnchainAuditReport) error {
	students, err := u.source.GetAllStudents(ctx)
	if err != nil {
		return err
	}
	known := make(map[common.Address]struct{}, len(students))
	for _, s := range students {
		known[s.WalletAddress] = struct{}{}
		onchain, err := reader.Student(ctx, s.WalletAddress)
		if err != nil {
			return err
		}
		report.StudentsChecked++
		addr := s.WalletAddress.Hex()
		if !onchain.IsRegistered {
			report.Add(entities.AuditFieldRegistered, addr, "true", "false")
			continue
		}
		if s.Name != onchain.Name {
			report.Add(entities.AuditFieldName, addr, s.Name, onchain.Name)
		}
		if entities.AmountString(s.Amount) != entities.AmountString(onchain.Amount) {
			report.Add(entities.AuditFieldAmount, addr, entities.AmountString(s.Amount), entities.AmountString(onchain.Amount))
		}
		if s.HasClaimed != onchain.HasClaimed {
			report.Add(entities.AuditFieldHasClaimed, addr, strconv.FormatBool(s.HasClaimed), strconv.FormatBool(onchain.HasClaimed))
		}
	}

	// registered on chain but unknown here
	all, err := reader.AllStudents(ctx)
	if err != nil {
		return err
	}
	for _, s := range all {
		if !s.IsRegistered {
			continue
		}
		if _, ok := known[s.WalletAddress]; !ok {
			report.Add(entities.AuditFieldRegistered, s.WalletAddress.Hex(), "false", "true")
		}
	}
	return nil
}
