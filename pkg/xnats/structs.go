package xnats

// RecalcReq asks the worker to replay one owner's ledger, sent whenever
// transactions changed (manual edit, csv import, standing order fill)
type RecalcReq struct {
	Owner  int64  `json:"owner"`
	Reason string `json:"reason"`
	Time   int64  `json:"time"` // request creation time, in nanoseconds
}

const (
	RecalcReasonImport = "import"
	RecalcReasonEdit   = "edit"
	RecalcReasonOrder  = "order"
)
