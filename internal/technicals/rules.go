package technicals

import (
	"math"

	"TAScan/internal/domain/models"
)

// Rules are total functions over present operands. Callers skip a family when any
// of its inputs is null.

// MA compares a moving average with the close.
func MA(ma, close float64) models.Recommendation {
	switch {
	case ma < close:
		return models.Buy
	case ma > close:
		return models.Sell
	default:
		return models.Neutral
	}
}

func RSI(rsi, rsiPrev float64) models.Recommendation {
	switch {
	case rsi < 30 && rsiPrev < rsi:
		return models.Buy
	case rsi > 70 && rsiPrev > rsi:
		return models.Sell
	default:
		return models.Neutral
	}
}

// Stoch votes on a %K/%D cross inside the oversold or overbought band.
func Stoch(k, d, kPrev, dPrev float64) models.Recommendation {
	switch {
	case k < 20 && d < 20 && k > d && kPrev < dPrev:
		return models.Buy
	case k > 80 && d > 80 && k < d && kPrev > dPrev:
		return models.Sell
	default:
		return models.Neutral
	}
}

func CCI20(cci, cciPrev float64) models.Recommendation {
	switch {
	case cci < -100 && cci > cciPrev:
		return models.Buy
	case cci > 100 && cci < cciPrev:
		return models.Sell
	default:
		return models.Neutral
	}
}

// ADX votes on a directional-index cross while the trend is strong.
func ADX(adx, plusDI, minusDI, plusDIPrev, minusDIPrev float64) models.Recommendation {
	switch {
	case adx > 20 && plusDIPrev < minusDIPrev && plusDI > minusDI:
		return models.Buy
	case adx > 20 && plusDIPrev > minusDIPrev && plusDI < minusDI:
		return models.Sell
	default:
		return models.Neutral
	}
}

// AO votes on a zero-line cross or a saucer.
func AO(ao, aoPrev, aoPrev2 float64) models.Recommendation {
	switch {
	case (ao > 0 && aoPrev < 0) || (ao > 0 && aoPrev > 0 && ao > aoPrev && aoPrev2 > aoPrev):
		return models.Buy
	case (ao < 0 && aoPrev > 0) || (ao < 0 && aoPrev < 0 && ao < aoPrev && aoPrev2 < aoPrev):
		return models.Sell
	default:
		return models.Neutral
	}
}

func Mom(mom, momPrev float64) models.Recommendation {
	switch {
	case mom > momPrev:
		return models.Buy
	case mom < momPrev:
		return models.Sell
	default:
		return models.Neutral
	}
}

func MACD(macd, signal float64) models.Recommendation {
	switch {
	case macd > signal:
		return models.Buy
	case macd < signal:
		return models.Sell
	default:
		return models.Neutral
	}
}

// Simple maps an upstream ternary score. Anything other than 1 or -1 is neutral.
func Simple(s float64) models.Recommendation {
	switch s {
	case 1:
		return models.Buy
	case -1:
		return models.Sell
	default:
		return models.Neutral
	}
}

// BBBuy and BBSell test the close against the Bollinger bands. Not part of the tally.
func BBBuy(close, lower float64) models.Recommendation {
	if close < lower {
		return models.Buy
	}
	return models.Neutral
}

func BBSell(close, upper float64) models.Recommendation {
	if close > upper {
		return models.Sell
	}
	return models.Neutral
}

// PSAR compares the parabolic SAR with the open. Not part of the tally.
func PSAR(psar, open float64) models.Recommendation {
	switch {
	case psar < open:
		return models.Buy
	case psar > open:
		return models.Sell
	default:
		return models.Neutral
	}
}

// Recommend labels a composite score in [-1, 1].
func Recommend(x *float64) models.Recommendation {
	if x == nil {
		return models.Error
	}
	v := *x
	switch {
	case math.IsNaN(v), v < -1, v > 1:
		return models.Error
	case v < -0.5:
		return models.StrongSell
	case v < -0.1:
		return models.Sell
	case v <= 0.1:
		return models.Neutral
	case v <= 0.5:
		return models.Buy
	default:
		return models.StrongBuy
	}
}
