package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	nativeTransferGasLimit = 21000
	tokenTransferGasLimit  = 200000
)

// ERC20 ABI minimal part for transfer
const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[],"payable":false,"stateMutability":"nonpayable","type":"function"}]`

// ErrInvalidAddress is returned when the recipient or token contract is not a 20-byte hex address.
var ErrInvalidAddress = errors.New("invalid address")

var (
	parsedTransferABI  abi.ABI
	parsedTransferOnce sync.Once
)

func transferABI() abi.ABI {
	parsedTransferOnce.Do(func() {
		var err error
		parsedTransferABI, err = abi.JSON(strings.NewReader(erc20TransferABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 transfer ABI: %v", err))
		}
	})
	return parsedTransferABI
}

var _ port.TransactionFormatter = (*TransactionFormatter)(nil)

// TransactionFormatter builds unsigned transfer payloads.
type TransactionFormatter struct {
	balances port.BalanceClient
	logger   port.Logger
}

// NewTransactionFormatter creates a formatter reading nonce and gas price through balances.
func NewTransactionFormatter(balances port.BalanceClient, logger port.Logger) *TransactionFormatter {
	return &TransactionFormatter{balances: balances, logger: logger}
}

// FormatTransaction builds a native transfer of value to `to`, or a token transfer when token is a
// contract address. value nil means zero.
func (f *TransactionFormatter) FormatTransaction(
	ctx context.Context,
	account string,
	to string,
	value *big.Int,
	token string,
) (entity.TransactionPayload, error) {
	accountID, err := entity.ParseAccountID(account)
	if err != nil {
		return entity.TransactionPayload{}, err
	}
	address := accountID.Address
	chainID := accountID.ChainID()

	if !common.IsHexAddress(to) {
		return entity.TransactionPayload{}, fmt.Errorf("%w: recipient %q", ErrInvalidAddress, to)
	}
	if token != "" && !common.IsHexAddress(token) {
		return entity.TransactionPayload{}, fmt.Errorf("%w: token %q", ErrInvalidAddress, token)
	}

	rawNonce, err := f.balances.GetAccountNonce(ctx, address, chainID)
	if err != nil {
		return entity.TransactionPayload{}, fmt.Errorf("failed to fetch nonce for address %s on chain %s: %w", address, chainID, err)
	}
	nonce := SanitizeHex(hexutil.EncodeUint64(rawNonce))

	rawGasPrice, err := f.balances.GetGasPrice(ctx, chainID)
	if err != nil {
		return entity.TransactionPayload{}, err
	}
	gasPrice := SanitizeHex(rawGasPrice)

	gasLimit := uint64(nativeTransferGasLimit)
	if token != "" {
		gasLimit = tokenTransferGasLimit
	}

	if value == nil {
		value = new(big.Int)
	}
	f.logger.Debug("Formatting transaction", "account", account, "value", value.String())
	finalValue := SanitizeHex(hexutil.EncodeBig(value))

	payload := entity.TransactionPayload{
		From:     address,
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: SanitizeHex(hexutil.EncodeUint64(gasLimit)),
	}

	if token != "" {
		data, err := transferABI().Pack("transfer", common.HexToAddress(to), value)
		if err != nil {
			return entity.TransactionPayload{}, fmt.Errorf("encode token transfer: %w", err)
		}
		payload.To = token
		payload.Data = hexutil.Encode(data)
		payload.Value = "0x00"
		return payload, nil
	}

	payload.To = to
	payload.Data = "0x"
	payload.Value = finalValue
	return payload, nil
}

// SanitizeHex strips a 0x prefix, left-pads to whole bytes and adds the prefix back.
// An empty quantity stays empty.
func SanitizeHex(hex string) string {
	hex = strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X")
	if len(hex)%2 != 0 {
		hex = "0" + hex
	}
	if hex == "" {
		return ""
	}
	return "0x" + hex
}
