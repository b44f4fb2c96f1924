package models

import (
	"github.com/colenielsonauto/agent-arc/internal/enum"
)

// RoutingRules is the per-client routing policy, loaded from
// clients/active/<client-id>/routing-rules.yaml.
type RoutingRules struct {
	// Routing maps a category to its primary destination address. Required.
	Routing map[enum.Category]string `yaml:"routing" json:"routing"`
	// BackupRouting is consulted when the primary mapping has no entry.
	BackupRouting map[enum.Category]string `yaml:"backup_routing" json:"backupRouting,omitempty"`
	Escalation    *EscalationConfig        `yaml:"escalation" json:"escalation,omitempty"`
	SpecialRules  *SpecialRules            `yaml:"special_rules" json:"specialRules,omitempty"`
}

type EscalationConfig struct {
	TimeBased *TimeBasedEscalation `yaml:"time_based" json:"timeBased,omitempty"`
	// KeywordBased maps a trigger keyword to an escalation destination.
	KeywordBased map[string]string `yaml:"keyword_based" json:"keywordBased,omitempty"`
}

type TimeBasedEscalation struct {
	Support []EscalationRule `yaml:"support" json:"support,omitempty"`
	Billing []EscalationRule `yaml:"billing" json:"billing,omitempty"`
	Sales   []EscalationRule `yaml:"sales" json:"sales,omitempty"`
	General []EscalationRule `yaml:"general" json:"general,omitempty"`
}

// ForCategory resolves the escalation chain by closed category.
func (t *TimeBasedEscalation) ForCategory(category enum.Category) []EscalationRule {
	if t == nil {
		return nil
	}
	switch category {
	case enum.CategorySupport:
		return t.Support
	case enum.CategoryBilling:
		return t.Billing
	case enum.CategorySales:
		return t.Sales
	case enum.CategoryGeneral:
		return t.General
	}
	return nil
}

type EscalationRule struct {
	// Hours after the routing decision at which to escalate.
	Hours      int    `yaml:"hours" json:"hours"`
	EscalateTo string `yaml:"escalate_to" json:"escalateTo"`
}

type SpecialRules struct {
	VIPDomains        []string `yaml:"vip_domains" json:"vipDomains,omitempty"`
	VIPRouteTo        string   `yaml:"vip_route_to" json:"vipRouteTo,omitempty"`
	AfterHoursRouteTo string   `yaml:"after_hours_route_to" json:"afterHoursRouteTo,omitempty"`
	WeekendRouteTo    string   `yaml:"weekend_route_to" json:"weekendRouteTo,omitempty"`
}
