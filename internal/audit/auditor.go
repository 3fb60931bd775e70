// Package audit pattern-matches contract source text for known risk
// indicators. Matching is case-insensitive and runs on comment-stripped
// source, so indicators mentioned only in comments never set a flag.
package audit

import (
	"regexp"
	"strings"

	"rugwatch/internal/domain"
)

// Function headers: name plus everything up to the body or terminator.
// The header tail carries visibility and applied modifiers.
var functionHeaderRe = regexp.MustCompile(`(?is)function\s+(\w+)\s*\(([^)]*)\)([^{;]*)`)

// Owner-gate modifiers commonly applied to privileged functions.
var ownerGateRe = regexp.MustCompile(`(?i)\bonly(owner|admin|authorized)\b`)

// Boolean trading gate: a bool state variable whose name signals an
// on/off switch for trading.
var tradingLockRe = regexp.MustCompile(`(?i)\bbool\b[^;{]*\b(trading(open|enabled|active|allowed|live)|cantrade|swapenabled|launched)\b`)

// Address-to-bool blacklist mapping.
var blacklistRe = regexp.MustCompile(`(?i)mapping\s*\(\s*address\s*=>\s*bool\s*\)[^;]*\b(_?is)?(black|block|bot|banned?)\w*\b`)

// Max-transaction-amount symbol.
var maxTxRe = regexp.MustCompile(`(?i)\b_?max(tx|transaction)\w*\b`)

// Fee-setter function names.
var feeSetterNameRe = regexp.MustCompile(`(?i)^(set|update|change)\w*(fee|tax)\w*$`)

// Mint function names.
var mintNameRe = regexp.MustCompile(`(?i)^_?mint\w*$|^\w*mint$`)

// Auditor derives AuditFlags from raw contract source text.
// Stateless and deterministic; safe for concurrent use.
type Auditor struct{}

// NewAuditor creates a static auditor.
func NewAuditor() *Auditor {
	return &Auditor{}
}

// Audit scans source text and returns the risk flags found.
// Empty or unparsable input produces all-false flags, never an error.
func (a *Auditor) Audit(source string) domain.AuditFlags {
	flags := domain.NewAuditFlags()
	if strings.TrimSpace(source) == "" {
		return flags
	}

	code := StripComments(source)

	flags[domain.FlagHasTradingLock] = tradingLockRe.MatchString(code)
	flags[domain.FlagHasBlacklist] = blacklistRe.MatchString(code)
	flags[domain.FlagHasMaxTx] = maxTxRe.MatchString(code)

	for _, header := range functionHeaderRe.FindAllStringSubmatch(code, -1) {
		name := header[1]
		tail := header[3]
		gated := ownerGateRe.MatchString(tail)

		if gated && mintNameRe.MatchString(name) {
			flags[domain.FlagHasMint] = true
		}
		if gated && feeSetterNameRe.MatchString(name) {
			flags[domain.FlagHasSetFee] = true
		}
	}

	return flags
}
