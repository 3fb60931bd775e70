package domain

// Audit flag names in canonical order. The order here is the order in
// which flags appear in the token feature vector.
const (
	FlagHasMint        = "has_mint"
	FlagHasBlacklist   = "has_blacklist"
	FlagHasTradingLock = "has_trading_lock"
	FlagHasSetFee      = "has_set_fee"
	FlagHasMaxTx       = "has_max_tx"
)

// FlagNames lists all audit flags in canonical order.
var FlagNames = []string{
	FlagHasMint,
	FlagHasBlacklist,
	FlagHasTradingLock,
	FlagHasSetFee,
	FlagHasMaxTx,
}

// AuditFlags maps a flag name to whether the pattern was found in source.
// Derived deterministically from ContractRecord.Source.
type AuditFlags map[string]bool

// NewAuditFlags returns AuditFlags with every known flag set to false.
func NewAuditFlags() AuditFlags {
	flags := make(AuditFlags, len(FlagNames))
	for _, name := range FlagNames {
		flags[name] = false
	}
	return flags
}

// Count returns the number of flags set to true.
func (f AuditFlags) Count() int {
	var n int
	for _, name := range FlagNames {
		if f[name] {
			n++
		}
	}
	return n
}
