package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"
	"wallet_connector/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	kadenaTestnetID = "testnet04"
	kadenaSymbol    = "KDA"

	// kadenaBalanceMultiplier converts a KDA amount into the common display unit.
	kadenaBalanceMultiplier = "10e17"

	pactGasLimit = 2500
	pactGasPrice = 1e-8
	pactTTL      = 28800

	// maxKadenaShards bounds the chain count accepted from /info.
	maxKadenaShards = 1024
)

// KadenaBalanceAdapter sums a k: account balance over every chain of a chainweb network.
type KadenaBalanceAdapter struct {
	client      *fasthttp.Client
	mainnetRoot string
	testnetRoot string
	shardCounts *cache.Cache
	logger      port.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewKadenaBalanceAdapter creates an adapter for the given chainweb API roots.
func NewKadenaBalanceAdapter(mainnetRoot, testnetRoot string, logger port.Logger, m *metrics.Metrics) *KadenaBalanceAdapter {
	if m == nil {
		m = metrics.New(nil)
	}
	return &KadenaBalanceAdapter{
		client:      &fasthttp.Client{},
		mainnetRoot: strings.TrimRight(mainnetRoot, "/"),
		testnetRoot: strings.TrimRight(testnetRoot, "/"),
		shardCounts: cache.New(cache.NoExpiration, 0),
		logger:      logger,
		metrics:     m,
		now:         time.Now,
	}
}

// GetAccountBalance implements port.ChainBalanceAdapter. Shard failures count as zero; it never fails.
func (a *KadenaBalanceAdapter) GetAccountBalance(ctx context.Context, publicKey, networkID string) (entity.AccountBalance, error) {
	shards := a.shardCount(ctx, networkID)

	shardBalances := make([]*big.Int, shards)
	var g errgroup.Group
	for shard := 0; shard < shards; shard++ {
		g.Go(func() error {
			shardBalances[shard] = a.balanceForShard(ctx, publicKey, networkID, strconv.Itoa(shard))
			return nil
		})
	}
	_ = g.Wait()

	total := new(big.Int)
	for _, b := range shardBalances {
		total.Add(total, b)
	}

	return entity.AccountBalance{
		Balance: total.String(),
		Symbol:  kadenaSymbol,
		Name:    kadenaSymbol,
	}, nil
}

// shardCount returns the memoized number of chains of networkID. A memoized 0 means unknown and is refetched.
func (a *KadenaBalanceAdapter) shardCount(ctx context.Context, networkID string) int {
	if v, ok := a.shardCounts.Get(networkID); ok {
		if n, _ := v.(int); n > 0 {
			return n
		}
	}

	n, err := a.fetchShardCount(ctx, networkID)
	if err != nil {
		a.logger.Error("Error fetching Kadena chain info", "network", networkID, "error", err)
		n = 0
	}
	a.shardCounts.Set(networkID, n, cache.NoExpiration)
	return n
}

func (a *KadenaBalanceAdapter) fetchShardCount(ctx context.Context, networkID string) (int, error) {
	body, err := a.do(ctx, fasthttp.MethodGet, a.apiRoot(networkID)+"/info", nil)
	if err != nil {
		return 0, err
	}
	count := gjson.GetBytes(body, "nodeNumberOfChains")
	if !count.Exists() {
		return 0, fmt.Errorf("nodeNumberOfChains missing from chainweb info")
	}
	n := count.Int()
	if n <= 0 || n > maxKadenaShards {
		return 0, fmt.Errorf("nodeNumberOfChains %d out of range", n)
	}
	return int(n), nil
}

func (a *KadenaBalanceAdapter) balanceForShard(ctx context.Context, publicKey, networkID, shard string) *big.Int {
	balance, err := a.queryShard(ctx, publicKey, networkID, shard)
	a.metrics.ShardQueries.WithLabelValues(networkID, metrics.Outcome(err)).Inc()
	if err != nil {
		// Accounts without on-chain activity on a shard fail here.
		a.logger.Debug("Kadena shard balance unavailable", "network", networkID, "chain", shard, "error", err)
		return new(big.Int)
	}
	return balance
}

func (a *KadenaBalanceAdapter) queryShard(ctx context.Context, publicKey, networkID, shard string) (*big.Int, error) {
	cmd, err := a.balanceCommand(publicKey, networkID, shard)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/chainweb/0.0/%s/chain/%s/pact/api/v1/local?preflight=false&signatureVerification=false",
		a.apiRoot(networkID), networkID, shard)

	body, err := a.do(ctx, fasthttp.MethodPost, url, cmd)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "result")
	if status := result.Get("status").String(); status != "success" {
		return nil, fmt.Errorf("pact local status %q", status)
	}
	data := result.Get("data")
	amount := data.Raw
	if data.IsObject() {
		amount = data.Get("decimal").String()
	}
	return scaleKadenaAmount(amount)
}

func (a *KadenaBalanceAdapter) apiRoot(networkID string) string {
	if networkID == kadenaTestnetID {
		return a.testnetRoot
	}
	return a.mainnetRoot
}

type pactExec struct {
	Code string         `json:"code"`
	Data map[string]any `json:"data"`
}

type pactPayload struct {
	Exec pactExec `json:"exec"`
}

type pactMeta struct {
	ChainID      string  `json:"chainId"`
	Sender       string  `json:"sender"`
	GasLimit     int     `json:"gasLimit"`
	GasPrice     float64 `json:"gasPrice"`
	TTL          int     `json:"ttl"`
	CreationTime int64   `json:"creationTime"`
}

type pactCmd struct {
	NetworkID string      `json:"networkId"`
	Payload   pactPayload `json:"payload"`
	Signers   []any       `json:"signers"`
	Meta      pactMeta    `json:"meta"`
	Nonce     string      `json:"nonce"`
}

type pactCommand struct {
	Hash string `json:"hash"`
	Sigs []any  `json:"sigs"`
	Cmd  string `json:"cmd"`
}

// balanceCommand builds the unsigned local command reading the coin balance of k:publicKey.
func (a *KadenaBalanceAdapter) balanceCommand(publicKey, networkID, shard string) ([]byte, error) {
	sender := "k:" + publicKey
	now := a.now().UTC()
	cmd := pactCmd{
		NetworkID: networkID,
		Payload: pactPayload{Exec: pactExec{
			Code: fmt.Sprintf(`(coin.get-balance "%s")`, sender),
			Data: map[string]any{},
		}},
		Signers: []any{},
		Meta: pactMeta{
			ChainID:      shard,
			Sender:       sender,
			GasLimit:     pactGasLimit,
			GasPrice:     pactGasPrice,
			TTL:          pactTTL,
			CreationTime: now.Unix(),
		},
		Nonce: now.Format(time.RFC3339Nano),
	}
	cmdJSON, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshal pact cmd: %w", err)
	}

	hash := blake2b.Sum256(cmdJSON)
	return json.Marshal(pactCommand{
		Hash: base64.RawURLEncoding.EncodeToString(hash[:]),
		Sigs: []any{},
		Cmd:  string(cmdJSON),
	})
}

func (a *KadenaBalanceAdapter) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = a.client.DoDeadline(req, resp, deadline)
	} else {
		err = a.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, fmt.Errorf("request %s: http %d", url, code)
	}
	return append([]byte(nil), resp.Body()...), nil
}

// scaleKadenaAmount multiplies a decimal KDA amount by the fixed multiplier, truncating to an integer.
func scaleKadenaAmount(amount string) (*big.Int, error) {
	value, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return nil, fmt.Errorf("invalid pact decimal %q", amount)
	}
	multiplier, _ := new(big.Rat).SetString(kadenaBalanceMultiplier)
	value.Mul(value, multiplier)
	return new(big.Int).Quo(value.Num(), value.Denom()), nil
}
