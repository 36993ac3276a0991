// internal/types/types_test.go
package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	assert.True(t, ValidVenue(VenueRaydium))
	assert.True(t, ValidVenue(VenueOrca))
	assert.False(t, ValidVenue("uniswap"))

	assert.True(t, ValidQuoteAsset(QuoteSOL))
	assert.True(t, ValidQuoteAsset(QuoteUSDC))
	assert.False(t, ValidQuoteAsset("DOGE"))

	assert.True(t, ValidBurnSource(SourceLiquidityMigration))
	assert.True(t, ValidBurnSource(SourceTradingFees))
	assert.False(t, ValidBurnSource("donations"))
}

func TestMinAmountOutBps(t *testing.T) {
	// 50 bps on 1_000_000 leaves 995_000.
	assert.Equal(t, uint64(995_000), MinAmountOutBps(1_000_000, 50))
	assert.Equal(t, uint64(1_000_000), MinAmountOutBps(1_000_000, 0))
	assert.Equal(t, uint64(900_000), MinAmountOutBps(1_000_000, 1000))
}

func TestErrorUnwrapping(t *testing.T) {
	inner := errors.New("boom")

	var err error = &ChainSubmissionError{Step: "send", Err: inner}
	assert.ErrorIs(t, err, inner)

	err = &MintError{Stage: "finalize", Err: &AmbiguousConfirmationError{Signature: "sig", Err: inner}}
	assert.ErrorIs(t, err, inner)
	var ambiguous *AmbiguousConfirmationError
	assert.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "sig", ambiguous.Signature)

	err = &BurnExecutionError{Stage: "swap", Err: inner}
	assert.ErrorIs(t, err, inner)
}
