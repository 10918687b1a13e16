package eod

import (
	"path/filepath"
	"time"

	"etf-trader/internal/tradelog"
	"etf-trader/internal/types"
)

func istNow() time.Time {
	return time.Now().In(types.IST)
}

func csvPath(t time.Time) string {
	d := t.In(types.IST).Format(types.DateLayout)
	return filepath.Join(tradelog.Dir(), "eod", d+".csv")
}
