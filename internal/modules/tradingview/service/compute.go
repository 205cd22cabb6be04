package service

import "trade_assistant/internal/models"

type vote int

const (
	voteNone vote = iota // нет данных
	voteBuy
	voteSell
	voteNeutral
)

// indicators — значения колонок сканера по имени без суффикса интервала.
type indicators map[string]float64

func (in indicators) has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := in[k]; !ok {
			return false
		}
	}
	return true
}

func maVote(ma, close float64) vote {
	switch {
	case ma < close:
		return voteBuy
	case ma > close:
		return voteSell
	default:
		return voteNeutral
	}
}

func rsiVote(rsi, prev float64) vote {
	switch {
	case rsi < 30 && prev < rsi:
		return voteBuy
	case rsi > 70 && prev > rsi:
		return voteSell
	default:
		return voteNeutral
	}
}

func stochVote(k, d, k1, d1 float64) vote {
	switch {
	case k < 20 && d < 20 && k > d && k1 < d1:
		return voteBuy
	case k > 80 && d > 80 && k < d && k1 > d1:
		return voteSell
	default:
		return voteNeutral
	}
}

func cciVote(cci, prev float64) vote {
	switch {
	case cci < -100 && cci > prev:
		return voteBuy
	case cci > 100 && cci < prev:
		return voteSell
	default:
		return voteNeutral
	}
}

func adxVote(adx, pdi, ndi, pdi1, ndi1 float64) vote {
	switch {
	case adx > 20 && pdi1 < ndi1 && pdi > ndi:
		return voteBuy
	case adx > 20 && pdi1 > ndi1 && pdi < ndi:
		return voteSell
	default:
		return voteNeutral
	}
}

func aoVote(ao, ao1, ao2 float64) vote {
	switch {
	case (ao > 0 && ao1 < 0) || (ao > 0 && ao1 > 0 && ao > ao1 && ao2 > ao1):
		return voteBuy
	case (ao < 0 && ao1 > 0) || (ao < 0 && ao1 < 0 && ao < ao1 && ao2 < ao1):
		return voteSell
	default:
		return voteNeutral
	}
}

func momVote(mom, prev float64) vote {
	switch {
	case mom < prev:
		return voteSell
	case mom > prev:
		return voteBuy
	default:
		return voteNeutral
	}
}

func macdVote(macd, signal float64) vote {
	switch {
	case macd > signal:
		return voteBuy
	case macd < signal:
		return voteSell
	default:
		return voteNeutral
	}
}

// simpleVote — для колонок Rec.*, где сканер уже отдаёт -1/0/1.
func simpleVote(v float64) vote {
	switch v {
	case -1:
		return voteSell
	case 1:
		return voteBuy
	default:
		return voteNeutral
	}
}

// Label — итоговая рекомендация по Recommend.All.
func Label(v float64) string {
	switch {
	case v < -0.5:
		return models.RecStrongSell
	case v < -0.1:
		return models.RecSell
	case v <= 0.1:
		return models.RecNeutral
	case v <= 0.5:
		return models.RecBuy
	default:
		return models.RecStrongBuy
	}
}

var maPeriods = []string{"10", "20", "30", "50", "100", "200"}

func (in indicators) oscillatorVotes() []vote {
	var out []vote
	add := func(v vote, keys ...string) {
		if in.has(keys...) {
			out = append(out, v)
		}
	}
	add(rsiVote(in["RSI"], in["RSI[1]"]), "RSI", "RSI[1]")
	add(stochVote(in["Stoch.K"], in["Stoch.D"], in["Stoch.K[1]"], in["Stoch.D[1]"]),
		"Stoch.K", "Stoch.D", "Stoch.K[1]", "Stoch.D[1]")
	add(cciVote(in["CCI20"], in["CCI20[1]"]), "CCI20", "CCI20[1]")
	add(adxVote(in["ADX"], in["ADX+DI"], in["ADX-DI"], in["ADX+DI[1]"], in["ADX-DI[1]"]),
		"ADX", "ADX+DI", "ADX-DI", "ADX+DI[1]", "ADX-DI[1]")
	add(aoVote(in["AO"], in["AO[1]"], in["AO[2]"]), "AO", "AO[1]", "AO[2]")
	add(momVote(in["Mom"], in["Mom[1]"]), "Mom", "Mom[1]")
	add(macdVote(in["MACD.macd"], in["MACD.signal"]), "MACD.macd", "MACD.signal")
	for _, k := range []string{"Rec.Stoch.RSI", "Rec.WR", "Rec.BBPower", "Rec.UO"} {
		add(simpleVote(in[k]), k)
	}
	return out
}

func (in indicators) movingAverageVotes() []vote {
	var out []vote
	if _, ok := in["close"]; ok {
		for _, p := range maPeriods {
			for _, k := range []string{"EMA" + p, "SMA" + p} {
				if v, ok := in[k]; ok {
					out = append(out, maVote(v, in["close"]))
				}
			}
		}
	}
	for _, k := range []string{"Rec.Ichimoku", "Rec.VWMA", "Rec.HullMA9"} {
		if v, ok := in[k]; ok {
			out = append(out, simpleVote(v))
		}
	}
	return out
}

// summarize собирает Recommendation. ok=false, если нет Recommend.All.
func (in indicators) summarize() (models.Recommendation, bool) {
	all, ok := in["Recommend.All"]
	if !ok {
		return models.Recommendation{}, false
	}
	rec := models.Recommendation{Label: Label(all)}
	for _, v := range append(in.oscillatorVotes(), in.movingAverageVotes()...) {
		switch v {
		case voteBuy:
			rec.Buy++
		case voteSell:
			rec.Sell++
		case voteNeutral:
			rec.Neutral++
		}
	}
	return rec, true
}

// columns — порядок колонок в запросе к сканеру.
func columns() []string {
	cols := []string{
		"Recommend.Other", "Recommend.All", "Recommend.MA",
		"RSI", "RSI[1]", "Stoch.K", "Stoch.D", "Stoch.K[1]", "Stoch.D[1]",
		"CCI20", "CCI20[1]", "ADX", "ADX+DI", "ADX-DI", "ADX+DI[1]", "ADX-DI[1]",
		"AO", "AO[1]", "AO[2]", "Mom", "Mom[1]", "MACD.macd", "MACD.signal",
		"Rec.Stoch.RSI", "Rec.WR", "Rec.BBPower", "Rec.UO",
		"close",
	}
	for _, p := range maPeriods {
		cols = append(cols, "EMA"+p, "SMA"+p)
	}
	return append(cols, "Rec.Ichimoku", "Rec.VWMA", "Rec.HullMA9")
}
