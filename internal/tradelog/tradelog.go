// Package tradelog journals executed trades and strategy decisions to
// daily JSONL files. Files roll over at IST midnight; older days can
// be gzipped in place. The journal is advisory: a write failure never
// blocks the trade that triggered it.
package tradelog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"etf-trader/internal/types"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	streams = map[string]*stream{}
)

// Entry is one executed trade.
type Entry struct {
	Time   string `json:"time"`
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	Qty    int    `json:"qty"`
	Price  string `json:"price"`
	TxID   string `json:"tx_id"`
	Reason string `json:"reason"`
	PnL    string `json:"pnl,omitempty"`
	Fills  int    `json:"fills,omitempty"`
}

// DecisionEntry is one strategy proposal, acted on or not.
type DecisionEntry struct {
	Time      string `json:"time"`
	Symbol    string `json:"symbol,omitempty"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
	Qty       int    `json:"qty,omitempty"`
	Price     string `json:"price,omitempty"`
	Deviation string `json:"deviation,omitempty"`
	ProfitPct string `json:"profit_pct,omitempty"`
}

type stream struct {
	date   string
	file   *os.File
	logger *zap.Logger
}

// Dir is the journal root, overridable with TRADER_LOG_DIR.
func Dir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

// DailyFilepath is where the given day's trades land.
func DailyFilepath(t time.Time) string {
	d := t.In(types.IST).Format(types.DateLayout)
	return filepath.Join(Dir(), d+".log")
}

func decisionsFilepath(t time.Time) string {
	d := t.In(types.IST).Format(types.DateLayout)
	return filepath.Join(Dir(), "decisions", d+".log")
}

func encoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:    "time",
		MessageKey: "event",
		LevelKey:   zapcore.OmitKey,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.In(types.IST).Format("2006-01-02 15:04:05"))
		},
	}
	return zapcore.NewJSONEncoder(cfg)
}

// get returns the cached logger for path, reopening on date rollover.
// Caller holds mu.
func get(path, date string) (*zap.Logger, error) {
	key := filepath.Dir(path)
	s := streams[key]
	if s != nil && s.date == date {
		return s.logger, nil
	}
	if s != nil {
		_ = s.logger.Sync()
		_ = s.file.Close()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(encoder(), zapcore.AddSync(f), zapcore.InfoLevel)
	streams[key] = &stream{date: date, file: f, logger: zap.New(core)}
	return streams[key].logger, nil
}

// Append journals one executed trade.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().In(types.IST)
	logger, err := get(DailyFilepath(now), now.Format(types.DateLayout))
	if err != nil {
		return err
	}
	logger.Info("trade",
		zap.String("symbol", e.Symbol),
		zap.String("side", e.Side),
		zap.Int("qty", e.Qty),
		zap.String("price", e.Price),
		zap.String("tx_id", e.TxID),
		zap.String("reason", e.Reason),
		zap.String("pnl", e.PnL),
		zap.Int("fills", e.Fills),
	)
	return logger.Sync()
}

// AppendDecision journals one strategy decision.
func AppendDecision(e DecisionEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().In(types.IST)
	logger, err := get(decisionsFilepath(now), now.Format(types.DateLayout))
	if err != nil {
		return err
	}
	logger.Info("decision",
		zap.String("symbol", e.Symbol),
		zap.String("action", e.Action),
		zap.String("reason", e.Reason),
		zap.Int("qty", e.Qty),
		zap.String("price", e.Price),
		zap.String("deviation", e.Deviation),
		zap.String("profit_pct", e.ProfitPct),
	)
	return logger.Sync()
}

// ReadDay parses the trade entries journaled on the given day. A
// missing file means no trades, not an error.
func ReadDay(t time.Time) ([]Entry, error) {
	f, err := os.Open(DailyFilepath(t))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue // torn or hand-edited line
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// Close flushes and releases all open journal files.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	for key, s := range streams {
		_ = s.logger.Sync()
		_ = s.file.Close()
		delete(streams, key)
	}
}

// CompressOlder gzips journal files older than retentionDays. Files it
// cannot read are skipped, never deleted.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(Dir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".log" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		compressFile(p)
		return nil
	})
}

func compressFile(p string) {
	gz := p + ".gz"
	if _, err := os.Stat(gz); err == nil {
		_ = os.Remove(p)
		return
	}

	in, err := os.Open(p)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(gz)
		return
	}
	_ = gw.Close()
	_ = out.Close()
	_ = os.Remove(p)
}
