package embed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	tokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXOptions locate a sentence-transformers model exported to ONNX.
type ONNXOptions struct {
	Model          string
	ModelPath      string
	TokenizerPath  string
	LibraryPath    string // libonnxruntime; empty uses the library default
	MaxBatchTokens int    // padded tokens per inference call
	MaxSeqLen      int
}

// ONNX runs a MiniLM-style encoder locally and mean-pools the last hidden
// state into unit-length sentence vectors.
type ONNX struct {
	opts      ONNXOptions
	tokenizer *tokenizer.Tokenizer
	session   *ort.DynamicAdvancedSession
	log       zerolog.Logger
}

// NewONNX loads the tokenizer and model.
func NewONNX(opts ONNXOptions, log zerolog.Logger) (*ONNX, error) {
	if opts.MaxBatchTokens <= 0 {
		opts.MaxBatchTokens = 8192
	}
	if opts.MaxSeqLen <= 0 {
		opts.MaxSeqLen = 256
	}

	tok, err := pretrained.FromFile(opts.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", opts.TokenizerPath, err)
	}

	if !ort.IsInitialized() {
		if opts.LibraryPath != "" {
			ort.SetSharedLibraryPath(opts.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	so, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer so.Destroy()

	if err := so.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("set graph optimization: %w", err)
	}
	if err := so.SetIntraOpNumThreads(0); err != nil {
		log.Warn().Err(err).Msg("could not set onnx thread count")
	}

	session, err := ort.NewDynamicAdvancedSession(
		opts.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		so,
	)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", opts.ModelPath, err)
	}

	log.Debug().Str("model", opts.ModelPath).Msg("onnx session ready")
	return &ONNX{opts: opts, tokenizer: tok, session: session, log: log}, nil
}

func (o *ONNX) Name() string { return "onnx/" + o.opts.Model }

// CacheID ties cached vectors to the model file as well as the model name.
func (o *ONNX) CacheID() string {
	return "onnx/" + o.opts.Model + "/" + Key(o.opts.ModelPath)[:12]
}

// Embed tokenizes all texts, then runs inference in batches whose padded
// size stays within MaxBatchTokens.
func (o *ONNX) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	inputs := make([]tokenizer.EncodeInput, len(texts))
	for i, t := range texts {
		inputs[i] = tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(t))
	}
	encodings, err := o.tokenizer.EncodeBatch(inputs, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	ids := make([][]int, len(encodings))
	masks := make([][]int, len(encodings))
	lengths := make([]int, len(encodings))
	for i, enc := range encodings {
		ids[i], masks[i] = truncate(enc.GetIds(), enc.GetAttentionMask(), o.opts.MaxSeqLen)
		lengths[i] = len(ids[i])
	}

	out := make([][]float32, 0, len(texts))
	for _, b := range planBatches(lengths, o.opts.MaxBatchTokens) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vecs, err := o.embedBatch(ids[b.start:b.end], masks[b.start:b.end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", b.start, b.end, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (o *ONNX) embedBatch(ids, masks [][]int) ([][]float32, error) {
	batch := len(ids)
	maxLen := 0
	for _, row := range ids {
		maxLen = max(maxLen, len(row))
	}

	inputIDs := make([]int64, batch*maxLen)
	attention := make([]int64, batch*maxLen)
	tokenTypes := make([]int64, batch*maxLen)
	for i := range ids {
		offset := i * maxLen
		for j := range ids[i] {
			inputIDs[offset+j] = int64(ids[i][j])
			attention[offset+j] = int64(masks[i][j])
		}
	}

	shape := ort.NewShape(int64(batch), int64(maxLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, attention)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typeTensor, err := ort.NewTensor(shape, tokenTypes)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := make([]ort.Value, 1)
	if err := o.session.Run([]ort.Value{idsTensor, maskTensor, typeTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	defer outputs[0].Destroy()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	s := hidden.GetShape() // [batch, seq, dim]
	if len(s) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", s)
	}
	return meanPool(hidden.GetData(), attention, int(s[0]), int(s[1]), int(s[2])), nil
}

func (o *ONNX) Close() error {
	if o.session != nil {
		o.session.Destroy()
	}
	return ort.DestroyEnvironment()
}

// truncate caps a sequence at maxLen tokens, keeping its final special
// token.
func truncate(ids, mask []int, maxLen int) ([]int, []int) {
	if len(ids) <= maxLen {
		return ids, mask
	}
	tid := append([]int(nil), ids[:maxLen]...)
	tm := append([]int(nil), mask[:maxLen]...)
	tid[maxLen-1] = ids[len(ids)-1]
	tm[maxLen-1] = mask[len(mask)-1]
	return tid, tm
}

type span struct{ start, end int }

// planBatches groups consecutive sequences so that count*longest stays
// within budget. A sequence longer than the budget gets a batch of its own.
func planBatches(lengths []int, budget int) []span {
	var out []span
	i := 0
	for i < len(lengths) {
		start, longest := i, 0
		for i < len(lengths) {
			next := max(longest, lengths[i])
			if i > start && (i-start+1)*next > budget {
				break
			}
			longest = next
			i++
		}
		out = append(out, span{start, i})
	}
	return out
}

// meanPool averages token vectors under the attention mask and normalizes
// each sentence vector.
func meanPool(hidden []float32, mask []int64, batch, seq, dim int) [][]float32 {
	out := make([][]float32, batch)
	for b := 0; b < batch; b++ {
		vec := make([]float32, dim)
		var count float32
		for t := 0; t < seq; t++ {
			if mask[b*seq+t] == 0 {
				continue
			}
			count++
			row := hidden[(b*seq+t)*dim : (b*seq+t+1)*dim]
			for d, x := range row {
				vec[d] += x
			}
		}
		if count > 0 {
			for d := range vec {
				vec[d] /= count
			}
		}
		Normalize(vec)
		out[b] = vec
	}
	return out
}
