package ledger

// HistoryCapacity is the number of closed days kept.
const HistoryCapacity = 3

// History keeps the most recent closed ledgers, most recent first.
type History struct {
	ledgers []DailyLedger
}

// Record pushes l to the front, evicting the oldest ledger beyond capacity.
func (h *History) Record(l DailyLedger) {
	h.ledgers = append([]DailyLedger{l}, h.ledgers...)
	if len(h.ledgers) > HistoryCapacity {
		h.ledgers = h.ledgers[:HistoryCapacity]
	}
}

// List returns a copy of the closed ledgers, most recent first.
func (h *History) List() []DailyLedger {
	out := make([]DailyLedger, len(h.ledgers))
	for i, l := range h.ledgers {
		out[i] = l.Clone()
	}
	return out
}

// Len returns the number of closed ledgers.
func (h *History) Len() int {
	return len(h.ledgers)
}
