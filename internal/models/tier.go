package models

import "strings"

// AccessTier is the authorization category of a chunk. A role may only see
// chunks of its own tier.
type AccessTier string

const (
	TierEngineering AccessTier = "engineering"
	TierGeneral     AccessTier = "general"
	TierMarketing   AccessTier = "marketing"
	TierFinance     AccessTier = "finance"
	TierHR          AccessTier = "hr"
)

// ParseAccessTier normalizes a directory or role name into a tier.
func ParseAccessTier(s string) AccessTier {
	return AccessTier(strings.ToLower(strings.TrimSpace(s)))
}

func (t AccessTier) String() string { return string(t) }

// Quarter is the time partition of a chunk or a query.
type Quarter string

const (
	Q1          Quarter = "Q1"
	Q2          Quarter = "Q2"
	Q3          Quarter = "Q3"
	Q4          Quarter = "Q4"
	QuarterNone Quarter = "none"
)

// Quarters lists the partitions in the fixed precedence order used when a
// question mentions more than one.
var Quarters = []Quarter{Q1, Q2, Q3, Q4}

func (q Quarter) String() string { return string(q) }

type SourceKind string

const (
	SourceMarkdown SourceKind = "markdown"
	SourceTabular  SourceKind = "tabular"
)
