package entity

// TransactionPayload is an unsigned transaction ready to be sent to a wallet for signing.
// All numeric fields are 0x-prefixed hex strings.
type TransactionPayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Data     string `json:"data"`
	Nonce    string `json:"nonce"`
	GasPrice string `json:"gasPrice"`
	GasLimit string `json:"gasLimit"`
	Value    string `json:"value"`
}
