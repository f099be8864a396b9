package fabric

import (
	"time"

	"github.com/xraph/fabric/link"
)

// Config holds configuration for the fabric engine.
type Config struct {
	// MaxTraversalDepth is the maximum depth for graph traversal
	// (Reachable). Defaults to 10.
	MaxTraversalDepth int `json:"max_traversal_depth,omitempty"`

	// CacheTTL is the time-to-live for cached permission decisions.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// DefaultArchiveAction controls what happens to an entity's links when
	// the entity is archived and no per-type policy matches. Defaults to
	// ArchiveBlock: archiving fails while non-availability links remain.
	DefaultArchiveAction link.ArchiveAction `json:"default_archive_action,omitempty"`

	// ArchivePolicies overrides the archive action per link type.
	ArchivePolicies []link.Policy `json:"archive_policies,omitempty"`

	// EnableAudit enables the action log. Defaults to true. Denials are
	// recorded regardless; this flag covers success records only.
	EnableAudit *bool `json:"enable_audit,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		MaxTraversalDepth:    10,
		DefaultArchiveAction: link.ArchiveBlock,
		EnableAudit:          &t,
	}
}

func (c Config) auditEnabled() bool { return c.EnableAudit == nil || *c.EnableAudit }

func (c Config) archiveActionFor(linkType string) link.ArchiveAction {
	for _, p := range c.ArchivePolicies {
		if p.LinkType == linkType {
			return p.OnArchive
		}
	}
	if c.DefaultArchiveAction == "" {
		return link.ArchiveBlock
	}
	return c.DefaultArchiveAction
}
