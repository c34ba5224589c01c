package replay

import (
	"math"
	"time"

	"cryptoSignalEngine/internal/domain"
)

// Result holds aggregated statistics over a replay run.
type Result struct {
	TotalTrades          int
	WinningTrades        int
	LosingTrades         int
	WinRate              float64
	ProfitFactor         float64
	AverageWin           float64
	AverageLoss          float64
	MaxDrawdown          float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageTradeDuration time.Duration
	FinalBalance         float64
	ReturnOnInvestment   float64
	Trades               []*domain.Trade
}

// Summarize aggregates trade statistics, compounding each leveraged trade
// return on the balance.
func Summarize(trades []*domain.Trade, initialFunds float64) *Result {
	res := &Result{
		Trades:       trades,
		FinalBalance: initialFunds,
	}
	if len(trades) == 0 {
		return res
	}

	var (
		balance         = initialFunds
		peak            = initialFunds
		grossWin        float64
		grossLoss       float64
		consecutiveWins int
		consecutiveLoss int
		totalDuration   time.Duration
	)

	for _, t := range trades {
		res.TotalTrades++
		balance *= 1 + t.Return
		totalDuration += t.Duration()

		if t.Return > 0 {
			res.WinningTrades++
			grossWin += t.Return
			consecutiveWins++
			consecutiveLoss = 0
			res.AverageWin = (res.AverageWin*float64(res.WinningTrades-1) + t.Return) / float64(res.WinningTrades)
		} else {
			res.LosingTrades++
			grossLoss += -t.Return
			consecutiveLoss++
			consecutiveWins = 0
			res.AverageLoss = (res.AverageLoss*float64(res.LosingTrades-1) + t.Return) / float64(res.LosingTrades)
		}
		if consecutiveWins > res.MaxConsecutiveWins {
			res.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLoss > res.MaxConsecutiveLosses {
			res.MaxConsecutiveLosses = consecutiveLoss
		}

		if balance > peak {
			peak = balance
		}
		if peak > 0 {
			drawdown := (peak - balance) / peak
			if drawdown > res.MaxDrawdown {
				res.MaxDrawdown = drawdown
			}
		}
	}

	res.WinRate = float64(res.WinningTrades) / float64(res.TotalTrades)
	if grossLoss > 0 {
		res.ProfitFactor = grossWin / grossLoss
	} else if grossWin > 0 {
		res.ProfitFactor = math.Inf(1)
	}
	res.AverageTradeDuration = totalDuration / time.Duration(res.TotalTrades)
	res.FinalBalance = balance
	res.ReturnOnInvestment = (balance - initialFunds) / initialFunds
	return res
}
