package reputation

import "kleotrust/native/lending"

// SignalsFor derives the eligibility counters for wallet from its latest
// retained event. The resulting score is used as the star count and negative
// scores count as zero. A wallet with no retained event has zero stars, which
// is indistinguishable from a wallet whose signals have not loaded yet.
func (a *Aggregator) SignalsFor(wallet string, vouchers uint64) lending.Signals {
	signals := lending.Signals{Vouchers: vouchers}
	event, ok := a.Latest(wallet)
	if ok && event.ResultingScore > 0 {
		signals.Stars = uint64(event.ResultingScore)
	}
	return signals
}
