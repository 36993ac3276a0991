// internal/chain/client.go
package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/noottools/launch-engine/internal/types"
	"go.uber.org/zap"
)

// ErrAccountNotFound is returned when a queried account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// IsAccountNotFoundError reports whether err looks like a "not found" RPC error.
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// RPCClient is a thin adapter over solana-go's RPC client.
type RPCClient struct {
	rpc            *rpc.Client
	logger         *zap.Logger
	confirmTimeout time.Duration
	maxRetries     uint64
}

// NewRPCClient creates a client against the given RPC URL. confirmTimeout
// bounds how long SubmitAndConfirm waits for a confirmation before
// surfacing an ambiguous-confirmation error.
func NewRPCClient(rpcURL string, confirmTimeout time.Duration, retries int, logger *zap.Logger) *RPCClient {
	if confirmTimeout <= 0 {
		confirmTimeout = 30 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &RPCClient{
		rpc:            rpc.New(rpcURL),
		logger:         logger.Named("chain-client"),
		confirmTimeout: confirmTimeout,
		maxRetries:     uint64(retries),
	}
}

// SubmitAndConfirm broadcasts tx with retry and waits for confirmation.
// A send failure is a *types.ChainSubmissionError (nothing was broadcast, or
// the chain rejected it pre-flight); a confirmation timeout after a
// successful broadcast is a *types.AmbiguousConfirmationError carrying the
// signature so the caller can re-query before retrying.
func (c *RPCClient) SubmitAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	signature, err := c.sendWithRetry(ctx, tx)
	if err != nil {
		return solana.Signature{}, &types.ChainSubmissionError{Step: "send", Err: err}
	}

	if err := c.awaitConfirmation(ctx, signature); err != nil {
		c.logger.Warn("confirmation not observed",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return signature, &types.AmbiguousConfirmationError{
			Signature: signature.String(),
			Err:       err,
		}
	}
	return signature, nil
}

func (c *RPCClient) sendWithRetry(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var signature solana.Signature
	operation := func() error {
		var err error
		signature, err = c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			c.logger.Warn("retrying transaction send", zap.Error(err))
			return err
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return solana.Signature{}, err
	}
	return signature, nil
}

func (c *RPCClient) awaitConfirmation(ctx context.Context, signature solana.Signature) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(c.confirmTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("confirmation timeout after %s", c.confirmTimeout)
		case <-ticker.C:
			statuses, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
			if err != nil {
				c.logger.Warn("error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed on chain: %v", status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized ||
				status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed {
				return nil
			}
		}
	}
}

// GetAccount returns account state, or (nil, nil) when the account does not
// exist. Callers disambiguating an ambiguous submission rely on that.
func (c *RPCClient) GetAccount(ctx context.Context, address solana.PublicKey) (*AccountInfo, error) {
	result, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		if IsAccountNotFoundError(err) {
			return nil, nil
		}
		c.logger.Debug("GetAccount error",
			zap.String("address", address.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, nil
	}
	return &AccountInfo{
		Owner:      result.Value.Owner,
		Lamports:   result.Value.Lamports,
		Data:       result.Value.Data.GetBinary(),
		Executable: result.Value.Executable,
	}, nil
}

// GetTransaction looks up a transaction by signature, (nil, nil) if unknown.
func (c *RPCClient) GetTransaction(ctx context.Context, signature solana.Signature) (*TxInfo, error) {
	result, err := c.rpc.GetTransaction(ctx, signature, &rpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if IsAccountNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	info := &TxInfo{
		Signature: signature,
		Slot:      result.Slot,
	}
	if result.BlockTime != nil {
		info.BlockTime = result.BlockTime.Time()
	}
	if result.Meta != nil {
		info.Err = result.Meta.Err
	}
	return info, nil
}

func (c *RPCClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("LatestBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

func (c *RPCClient) MinimumBalanceForRentExemption(ctx context.Context, space uint64) (uint64, error) {
	return c.rpc.GetMinimumBalanceForRentExemption(ctx, space, rpc.CommitmentFinalized)
}

var _ Client = (*RPCClient)(nil)
