// internal/aggregator/jupiter.go
package aggregator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

// JupiterClient talks to a jupiter-compatible aggregator HTTP API.
type JupiterClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Aggregator = (*JupiterClient)(nil)

func NewJupiterClient(baseURL string, logger *zap.Logger) *JupiterClient {
	return &JupiterClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger.Named("jupiter"),
	}
}

type quoteResponse struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	OtherAmountOut string `json:"otherAmountThreshold"`
	PriceImpactPct string `json:"priceImpactPct"`
}

// Quote fetches the best route for the requested swap.
func (c *JupiterClient) Quote(ctx context.Context, req QuoteRequest) (*Route, error) {
	params := url.Values{}
	params.Set("inputMint", req.InputMint.String())
	params.Set("outputMint", req.OutputMint.String())
	params.Set("amount", strconv.FormatUint(req.AmountIn, 10))
	params.Set("slippageBps", strconv.Itoa(req.SlippageBps))

	endpoint := fmt.Sprintf("%s/quote?%s", c.baseURL, params.Encode())
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("quote response decode: %w", err)
	}
	if quote.OutAmount == "" || quote.OutAmount == "0" {
		return nil, ErrNoRoute
	}

	amountOut, err := strconv.ParseUint(quote.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("quote outAmount %q: %w", quote.OutAmount, err)
	}
	minOut := amountOut
	if quote.OtherAmountOut != "" {
		if parsed, err := strconv.ParseUint(quote.OtherAmountOut, 10, 64); err == nil {
			minOut = parsed
		}
	}
	priceImpact, _ := strconv.ParseFloat(quote.PriceImpactPct, 64)

	return &Route{
		InputMint:    req.InputMint,
		OutputMint:   req.OutputMint,
		AmountIn:     req.AmountIn,
		AmountOut:    amountOut,
		MinAmountOut: minOut,
		PriceImpact:  priceImpact,
		raw:          body,
	}, nil
}

type swapRequest struct {
	QuoteResponse   json.RawMessage `json:"quoteResponse"`
	UserPublicKey   string          `json:"userPublicKey"`
	WrapUnwrapSOL   bool            `json:"wrapAndUnwrapSol"`
	DynamicSlippage bool            `json:"dynamicSlippage"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// BuildSwapTransaction exchanges a quoted route for an unsigned transaction.
func (c *JupiterClient) BuildSwapTransaction(ctx context.Context, route *Route, owner solana.PublicKey) (*solana.Transaction, error) {
	if route == nil || len(route.raw) == 0 {
		return nil, fmt.Errorf("route has no quote payload")
	}

	payload, err := json.Marshal(swapRequest{
		QuoteResponse: route.raw,
		UserPublicKey: owner.String(),
		WrapUnwrapSOL: true,
	})
	if err != nil {
		return nil, fmt.Errorf("swap request encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/swap", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("swap request build: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("swap request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("swap response read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("swap request returned %d: %s", resp.StatusCode, string(body))
	}

	var swap swapResponse
	if err := json.Unmarshal(body, &swap); err != nil {
		return nil, fmt.Errorf("swap response decode: %w", err)
	}

	rawTx, err := base64.StdEncoding.DecodeString(swap.SwapTransaction)
	if err != nil {
		return nil, fmt.Errorf("swap transaction decode: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(rawTx))
	if err != nil {
		return nil, fmt.Errorf("swap transaction parse: %w", err)
	}

	c.logger.Debug("swap transaction built",
		zap.String("input_mint", route.InputMint.String()),
		zap.String("output_mint", route.OutputMint.String()),
		zap.Uint64("amount_in", route.AmountIn))
	return tx, nil
}

func (c *JupiterClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("request build: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("response read: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoRoute
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
