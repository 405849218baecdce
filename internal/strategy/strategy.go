package strategy

import "spot_bot/internal/models"

// Action: решение стратегии на текущем цикле.
type Action string

const (
	ActionHold  Action = "HOLD"
	ActionEnter Action = "ENTER"
	ActionExit  Action = "EXIT"
)

type Config struct {
	RSIOverbought  float64
	RSIOversold    float64
	MinPriceChange float64 // fraction

	StopLoss float64
	Trailing models.TrailingConfig
}

func ConfigFrom(c models.StrategyConfig) Config {
	return Config{
		RSIOverbought:  c.RSIOverbought,
		RSIOversold:    c.RSIOversold,
		MinPriceChange: c.MinPriceChange,
		StopLoss:       c.StopLoss,
		Trailing:       c.Trailing,
	}
}

// Market is what one cycle observed, already reduced to indicator values.
type Market struct {
	Price       float64
	HourlyClose float64
	HourlyEMA   float64
	FastClose   float64
	FastEMA     float64
	RSI         float64
	PriceChange float64 // fraction
}

type Decision struct {
	Action Action
	Trend  models.Trend
	// Side is the position an ENTER opens.
	Side   models.PositionSide
	Reason string
	// NewStopLoss is set when the trailing stop tightened this cycle.
	NewStopLoss float64
}

// Evaluator classifies trend and turns indicator values into ENTER/EXIT/HOLD. It keeps no state.
type Evaluator struct {
	cfg Config
}

func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

func (e *Evaluator) Evaluate(pos models.PositionState, m Market) Decision {
	primary := ClassifyTrend(m.HourlyClose, m.HourlyEMA)
	confirm := ClassifyTrend(m.FastClose, m.FastEMA)
	trend := CombineTrends(primary, confirm)

	d := Decision{Action: ActionHold, Trend: trend}

	if pos.Open() {
		if stop, moved := e.Trail(pos, m.Price); moved {
			d.NewStopLoss = stop
			pos.StopLossPrice = stop
		}
		if exit, reason := ShouldExit(pos, m.Price); exit {
			d.Action = ActionExit
			d.Reason = reason
		}
		return d
	}

	in := Inputs{Trend: primary, ConfirmTrend: confirm, PriceChange: m.PriceChange, RSI: m.RSI}
	if e.ShouldEnter(in) {
		d.Action = ActionEnter
		d.Side = models.EntrySide(trend)
		d.Reason = entryReason(in)
	}
	return d
}
