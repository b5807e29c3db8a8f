package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/alexanderramin/timeai/internal/contract"
	"golang.org/x/sync/errgroup"
)

// maxBatchLine bounds a single request line.
const maxBatchLine = 16 << 20

// BatchRequest is one line of batch input.
type BatchRequest struct {
	Op      contract.Operation `json:"op"`
	Payload json.RawMessage    `json:"payload"`
}

type batchService struct {
	scheduler   SchedulerService
	concurrency int
	logger      *slog.Logger
}

// NewBatchService runs batch lines through sched with at most concurrency
// requests in flight.
func NewBatchService(sched SchedulerService, concurrency int, logger *slog.Logger) BatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &batchService{scheduler: sched, concurrency: concurrency, logger: logger}
}

// RunBatch reads one JSON request per line from in and writes one JSON result
// per line to out, in input order. Blank lines are ignored. A line that does
// not decode, or names an unknown operation, yields {}. prepare, when set,
// adjusts every decoded request before it runs.
func (b *batchService) RunBatch(ctx context.Context, in io.Reader, out io.Writer, prepare func(*contract.Request)) error {
	var lines [][]byte
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxBatchLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading batch input: %w", err)
	}

	results := make([][]byte, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, line := range lines {
		g.Go(func() error {
			res, err := b.runLine(gctx, i, line, prepare)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	for _, res := range results {
		w.Write(res)
		w.WriteByte('\n')
	}
	return w.Flush()
}

var emptyResult = []byte("{}")

func (b *batchService) runLine(ctx context.Context, n int, line []byte, prepare func(*contract.Request)) ([]byte, error) {
	var br BatchRequest
	if err := json.Unmarshal(line, &br); err != nil {
		b.logger.WarnContext(ctx, "skipping malformed batch line", "line", n+1, "error", err)
		return emptyResult, nil
	}
	if !br.Op.Valid() {
		return emptyResult, nil
	}
	payload := br.Payload
	if len(payload) == 0 || string(payload) == "null" {
		payload = []byte("{}")
	}
	req, err := contract.DecodeRequest(payload)
	if err != nil {
		b.logger.WarnContext(ctx, "skipping malformed batch payload", "line", n+1, "error", err)
		return emptyResult, nil
	}
	if prepare != nil {
		prepare(req)
	}

	res, err := b.scheduler.Run(ctx, br.Op, req)
	if err != nil {
		return nil, fmt.Errorf("batch line %d: %w", n+1, err)
	}
	encoded, err := encodeResult(res)
	if err != nil {
		return nil, fmt.Errorf("encoding batch line %d: %w", n+1, err)
	}
	return encoded, nil
}

// encodeResult renders res on one line the way the single-request command
// prints it, with HTML characters left unescaped.
func encodeResult(res any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
