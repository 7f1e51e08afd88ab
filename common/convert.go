package common

import (
	"github.com/chain-lab/go-molecule/codec"
	"github.com/pkg/errors"
	"math/big"
)

func hashFromValue(v any) (Hash, error) {
	var h Hash
	b, err := codec.ToBytes(v)
	if err != nil {
		return h, err
	}
	if len(b) != HashLength {
		return h, errors.Wrapf(codec.ErrLength, "hash expects %d bytes, got %d", HashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (s *Script) ToValue() codec.Object {
	return codec.Object{
		"codeHash": s.CodeHash.Hex(),
		"hashType": string(s.HashType),
		"args":     codec.Hexify(s.Args),
	}
}

// ScriptFromValue 把解码得到的 Script 值转换为结构体
func ScriptFromValue(v any) (*Script, error) {
	r := newObjectReader(v)
	s := &Script{
		CodeHash: r.hash("codeHash"),
		HashType: HashType(r.string("hashType")),
		Args:     r.bytes("args"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

func (o *OutPoint) ToValue() codec.Object {
	return codec.Object{
		"txHash": o.TxHash.Hex(),
		"index":  o.Index,
	}
}

func OutPointFromValue(v any) (*OutPoint, error) {
	r := newObjectReader(v)
	o := &OutPoint{
		TxHash: r.hash("txHash"),
		Index:  r.uint32("index"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return o, nil
}

func (c *CellInput) ToValue() codec.Object {
	return codec.Object{
		"since":          c.Since,
		"previousOutput": c.PreviousOutput.ToValue(),
	}
}

func CellInputFromValue(v any) (*CellInput, error) {
	r := newObjectReader(v)
	since := r.uint64("since")
	previous, ok := r.value("previousOutput")
	if !ok {
		return nil, r.err
	}

	outPoint, err := OutPointFromValue(previous)
	if err != nil {
		return nil, errors.WithMessage(err, "field previousOutput")
	}
	return &CellInput{Since: since, PreviousOutput: *outPoint}, nil
}

func (c *CellOutput) ToValue() codec.Object {
	var typeScript any
	if c.Type != nil {
		typeScript = c.Type.ToValue()
	}
	return codec.Object{
		"capacity": c.Capacity,
		"lock":     c.Lock.ToValue(),
		"type":     typeScript,
	}
}

func CellOutputFromValue(v any) (*CellOutput, error) {
	r := newObjectReader(v)
	capacity := r.uint64("capacity")
	lockValue, ok := r.value("lock")
	if !ok {
		return nil, r.err
	}

	lock, err := ScriptFromValue(lockValue)
	if err != nil {
		return nil, errors.WithMessage(err, "field lock")
	}

	output := &CellOutput{Capacity: capacity, Lock: *lock}
	if typeValue := r.obj["type"]; typeValue != nil {
		output.Type, err = ScriptFromValue(typeValue)
		if err != nil {
			return nil, errors.WithMessage(err, "field type")
		}
	}
	return output, nil
}

func (c *CellDep) ToValue() codec.Object {
	return codec.Object{
		"outPoint": c.OutPoint.ToValue(),
		"depType":  string(c.DepType),
	}
}

func CellDepFromValue(v any) (*CellDep, error) {
	r := newObjectReader(v)
	depType := DepType(r.string("depType"))
	outPointValue, ok := r.value("outPoint")
	if !ok {
		return nil, r.err
	}

	outPoint, err := OutPointFromValue(outPointValue)
	if err != nil {
		return nil, errors.WithMessage(err, "field outPoint")
	}
	return &CellDep{OutPoint: *outPoint, DepType: depType}, nil
}

func (tx *RawTransaction) ToValue() codec.Object {
	cellDeps := make([]any, len(tx.CellDeps))
	for idx := range tx.CellDeps {
		cellDeps[idx] = tx.CellDeps[idx].ToValue()
	}
	headerDeps := make([]any, len(tx.HeaderDeps))
	for idx, h := range tx.HeaderDeps {
		headerDeps[idx] = h.Hex()
	}
	inputs := make([]any, len(tx.Inputs))
	for idx := range tx.Inputs {
		inputs[idx] = tx.Inputs[idx].ToValue()
	}
	outputs := make([]any, len(tx.Outputs))
	for idx := range tx.Outputs {
		outputs[idx] = tx.Outputs[idx].ToValue()
	}

	return codec.Object{
		"version":     tx.Version,
		"cellDeps":    cellDeps,
		"headerDeps":  headerDeps,
		"inputs":      inputs,
		"outputs":     outputs,
		"outputsData": hexList(tx.OutputsData),
	}
}

func readRawTransaction(r *objectReader) RawTransaction {
	tx := RawTransaction{Version: r.uint32("version")}

	r.list("cellDeps", func(_ int, item any) error {
		dep, err := CellDepFromValue(item)
		if err == nil {
			tx.CellDeps = append(tx.CellDeps, *dep)
		}
		return err
	})
	r.list("headerDeps", func(_ int, item any) error {
		h, err := hashFromValue(item)
		if err == nil {
			tx.HeaderDeps = append(tx.HeaderDeps, h)
		}
		return err
	})
	r.list("inputs", func(_ int, item any) error {
		input, err := CellInputFromValue(item)
		if err == nil {
			tx.Inputs = append(tx.Inputs, *input)
		}
		return err
	})
	r.list("outputs", func(_ int, item any) error {
		output, err := CellOutputFromValue(item)
		if err == nil {
			tx.Outputs = append(tx.Outputs, *output)
		}
		return err
	})
	r.list("outputsData", func(_ int, item any) error {
		data, err := codec.ToBytes(item)
		if err == nil {
			tx.OutputsData = append(tx.OutputsData, data)
		}
		return err
	})
	return tx
}

func RawTransactionFromValue(v any) (*RawTransaction, error) {
	r := newObjectReader(v)
	tx := readRawTransaction(r)
	if r.err != nil {
		return nil, r.err
	}
	return &tx, nil
}

// ToValue 返回扁平形式的交易，raw 的字段和 witnesses 在同一层
func (tx *Transaction) ToValue() codec.Object {
	value := tx.RawTransaction.ToValue()
	value["witnesses"] = hexList(tx.Witnesses)
	return value
}

// TransactionFromValue
//
//	@Description: 把交易值转换为结构体，同时支持扁平形式和 {raw, witnesses} 形式
//	@param v - Transaction 编解码器解码出的值
//	@return *Transaction
func TransactionFromValue(v any) (*Transaction, error) {
	r := newObjectReader(v)
	if r.err != nil {
		return nil, r.err
	}

	tx := &Transaction{}
	if raw, ok := r.obj["raw"]; ok {
		rawTx, err := RawTransactionFromValue(raw)
		if err != nil {
			return nil, errors.WithMessage(err, "field raw")
		}
		tx.RawTransaction = *rawTx
	} else {
		tx.RawTransaction = readRawTransaction(r)
	}

	r.list("witnesses", func(_ int, item any) error {
		witness, err := codec.ToBytes(item)
		if err == nil {
			tx.Witnesses = append(tx.Witnesses, witness)
		}
		return err
	})
	if r.err != nil {
		return nil, r.err
	}
	return tx, nil
}

func (h *RawHeader) ToValue() codec.Object {
	return codec.Object{
		"version":          h.Version,
		"compactTarget":    h.CompactTarget,
		"timestamp":        h.Timestamp,
		"number":           h.Number,
		"epoch":            h.Epoch,
		"parentHash":       h.ParentHash.Hex(),
		"transactionsRoot": h.TransactionsRoot.Hex(),
		"proposalsHash":    h.ProposalsHash.Hex(),
		"extraHash":        h.ExtraHash.Hex(),
		"dao":              h.Dao.Hex(),
	}
}

func readRawHeader(r *objectReader) RawHeader {
	return RawHeader{
		Version:          r.uint32("version"),
		CompactTarget:    r.uint32("compactTarget"),
		Timestamp:        r.uint64("timestamp"),
		Number:           r.uint64("number"),
		Epoch:            r.uint64("epoch"),
		ParentHash:       r.hash("parentHash"),
		TransactionsRoot: r.hash("transactionsRoot"),
		ProposalsHash:    r.hash("proposalsHash"),
		ExtraHash:        r.hash("extraHash"),
		Dao:              r.hash("dao"),
	}
}

// ToValue 返回扁平形式的区块头，nonce 为 nil 时按 0 处理
func (h *Header) ToValue() codec.Object {
	value := h.RawHeader.ToValue()
	nonce := h.Nonce
	if nonce == nil {
		nonce = new(big.Int)
	}
	value["nonce"] = new(big.Int).Set(nonce)
	return value
}

func HeaderFromValue(v any) (*Header, error) {
	r := newObjectReader(v)
	if r.err != nil {
		return nil, r.err
	}

	header := &Header{}
	if raw, ok := r.obj["raw"]; ok {
		rr := newObjectReader(raw)
		header.RawHeader = readRawHeader(rr)
		if rr.err != nil {
			return nil, errors.WithMessage(rr.err, "field raw")
		}
	} else {
		header.RawHeader = readRawHeader(r)
	}

	header.Nonce = r.bigInt("nonce")
	if r.err != nil {
		return nil, r.err
	}
	return header, nil
}

func proposalList(proposals []ProposalShortId) []any {
	result := make([]any, len(proposals))
	for idx, p := range proposals {
		result[idx] = codec.Hexify(p[:])
	}
	return result
}

func readProposals(r *objectReader) []ProposalShortId {
	var proposals []ProposalShortId
	r.list("proposals", func(_ int, item any) error {
		b, err := codec.ToBytes(item)
		if err != nil {
			return err
		}
		if len(b) != ProposalShortIdLength {
			return errors.Wrapf(codec.ErrLength, "proposal id expects %d bytes, got %d", ProposalShortIdLength, len(b))
		}
		var id ProposalShortId
		copy(id[:], b)
		proposals = append(proposals, id)
		return nil
	})
	return proposals
}

func readHeaderField(r *objectReader) Header {
	v, ok := r.value("header")
	if !ok {
		return Header{}
	}
	header, err := HeaderFromValue(v)
	if err != nil {
		r.fail("header", err)
		return Header{}
	}
	return *header
}

func (u *UncleBlock) ToValue() codec.Object {
	return codec.Object{
		"header":    u.Header.ToValue(),
		"proposals": proposalList(u.Proposals),
	}
}

func UncleBlockFromValue(v any) (*UncleBlock, error) {
	r := newObjectReader(v)
	uncle := &UncleBlock{
		Header:    readHeaderField(r),
		Proposals: readProposals(r),
	}
	if r.err != nil {
		return nil, r.err
	}
	return uncle, nil
}

// ToValue 在 Extension 不为 nil 时带上 extension 字段，用 BlockV1 编码
func (b *Block) ToValue() codec.Object {
	uncles := make([]any, len(b.Uncles))
	for idx := range b.Uncles {
		uncles[idx] = b.Uncles[idx].ToValue()
	}
	transactions := make([]any, len(b.Transactions))
	for idx := range b.Transactions {
		transactions[idx] = b.Transactions[idx].ToValue()
	}

	value := codec.Object{
		"header":       b.Header.ToValue(),
		"uncles":       uncles,
		"transactions": transactions,
		"proposals":    proposalList(b.Proposals),
	}
	if b.Extension != nil {
		value["extension"] = codec.Hexify(b.Extension)
	}
	return value
}

func BlockFromValue(v any) (*Block, error) {
	r := newObjectReader(v)
	block := &Block{Header: readHeaderField(r)}

	r.list("uncles", func(_ int, item any) error {
		uncle, err := UncleBlockFromValue(item)
		if err == nil {
			block.Uncles = append(block.Uncles, *uncle)
		}
		return err
	})
	r.list("transactions", func(_ int, item any) error {
		tx, err := TransactionFromValue(item)
		if err == nil {
			block.Transactions = append(block.Transactions, *tx)
		}
		return err
	})
	block.Proposals = readProposals(r)
	block.Extension = r.optionalBytes("extension")

	if r.err != nil {
		return nil, r.err
	}
	return block, nil
}

func (w *WitnessArgs) ToValue() codec.Object {
	return codec.Object{
		"lock":       optionalHex(w.Lock),
		"inputType":  optionalHex(w.InputType),
		"outputType": optionalHex(w.OutputType),
	}
}

func WitnessArgsFromValue(v any) (*WitnessArgs, error) {
	r := newObjectReader(v)
	w := &WitnessArgs{
		Lock:       r.optionalBytes("lock"),
		InputType:  r.optionalBytes("inputType"),
		OutputType: r.optionalBytes("outputType"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return w, nil
}

func (c *CellbaseWitness) ToValue() codec.Object {
	return codec.Object{
		"lock":    c.Lock.ToValue(),
		"message": codec.Hexify(c.Message),
	}
}

func CellbaseWitnessFromValue(v any) (*CellbaseWitness, error) {
	r := newObjectReader(v)
	message := r.bytes("message")
	lockValue, ok := r.value("lock")
	if !ok {
		return nil, r.err
	}

	lock, err := ScriptFromValue(lockValue)
	if err != nil {
		return nil, errors.WithMessage(err, "field lock")
	}
	return &CellbaseWitness{Lock: *lock, Message: message}, nil
}
