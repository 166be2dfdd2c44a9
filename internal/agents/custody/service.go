// Package custody implements the chain agent: wallet balance lookups, gas
// price estimates and signed-transaction relay.
package custody

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/HLKC779/financial-agents/internal/chain"
	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// Service is the custody agent.
type Service struct {
	client chain.Client
	log    *logger.Logger
}

// New constructs a custody service. A nil client falls back to the
// simulator.
func New(client chain.Client, log *logger.Logger) *Service {
	if client == nil {
		client = chain.Simulator{}
	}
	if log == nil {
		log = logger.NewDefault("custody")
	}
	return &Service{client: client, log: log}
}

// Balance returns the balance of a wallet address.
func (s *Service) Balance(ctx context.Context, address string) (chain.Balance, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return chain.Balance{}, fault.Required("address")
	}
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return chain.Balance{}, fault.Invalid("address", "must be a 0x-prefixed 40-hex-digit address")
	}

	balance, err := s.client.Balance(ctx, address)
	if err != nil {
		return chain.Balance{}, err
	}
	s.log.WithField("address", address).
		WithField("balance_eth", balance.BalanceETH).
		Info("balance checked")
	return balance, nil
}

// GasPrices returns current gas price tiers.
func (s *Service) GasPrices(ctx context.Context) (chain.GasPrices, error) {
	return s.client.GasPrices(ctx)
}

// SendRaw relays a signed transaction payload.
func (s *Service) SendRaw(ctx context.Context, rawTx string) (chain.TxSubmission, error) {
	rawTx = strings.TrimSpace(rawTx)
	if rawTx == "" {
		return chain.TxSubmission{}, fault.Required("raw_tx")
	}
	if !strings.HasPrefix(rawTx, "0x") || len(rawTx) < 4 || len(rawTx)%2 != 0 {
		return chain.TxSubmission{}, fault.Invalid("raw_tx", "must be a 0x-prefixed hex payload")
	}
	if _, err := hex.DecodeString(rawTx[2:]); err != nil {
		return chain.TxSubmission{}, fault.Invalid("raw_tx", "must be a 0x-prefixed hex payload")
	}

	sub, err := s.client.SendRaw(ctx, rawTx)
	if err != nil {
		return chain.TxSubmission{}, err
	}
	s.log.WithField("tx_hash", sub.Hash).Info("raw transaction relayed")
	return sub, nil
}
