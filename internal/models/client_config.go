package models

import (
	"github.com/colenielsonauto/agent-arc/internal/enum"
)

// ClientConfig is the full per-client configuration record. It is loaded from
// clients/active/<client-id>/client-config.yaml, cached, and treated as
// immutable between reloads.
type ClientConfig struct {
	Client        ClientInfo      `yaml:"client" json:"client"`
	Domains       DomainConfig    `yaml:"domains" json:"domains"`
	Branding      BrandingConfig  `yaml:"branding" json:"branding"`
	ResponseTimes ResponseTimes   `yaml:"response_times" json:"responseTimes"`
	Contacts      ContactsConfig  `yaml:"contacts" json:"contacts"`
	Settings      ClientSettings  `yaml:"settings" json:"settings"`
}

type ClientInfo struct {
	ID       string            `yaml:"id" json:"id"`
	Name     string            `yaml:"name" json:"name"`
	Industry string            `yaml:"industry" json:"industry"`
	Status   enum.ClientStatus `yaml:"status" json:"status"`
	Timezone string            `yaml:"timezone" json:"timezone"`
	// BusinessHours is a "start-end" hour window, Monday to Friday, e.g. "9-17".
	BusinessHours string `yaml:"business_hours" json:"businessHours"`
}

type DomainConfig struct {
	// Primary company domain, e.g. "acme.com".
	Primary string `yaml:"primary" json:"primary"`
	// Support is the inbound support address, e.g. "help@support.acme.com".
	Support string `yaml:"support" json:"support"`
	// Sending is the outbound sending domain.
	Sending string `yaml:"sending" json:"sending"`
}

type BrandingConfig struct {
	CompanyName    string `yaml:"company_name" json:"companyName"`
	EmailSignature string `yaml:"email_signature" json:"emailSignature"`
	PrimaryColor   string `yaml:"primary_color" json:"primaryColor"`
	SecondaryColor string `yaml:"secondary_color" json:"secondaryColor"`
}

type ResponseTimes struct {
	Support string `yaml:"support" json:"support"`
	Billing string `yaml:"billing" json:"billing"`
	Sales   string `yaml:"sales" json:"sales"`
	General string `yaml:"general" json:"general"`
}

// ForCategory resolves a response time by closed category, falling back to the
// general commitment.
func (r ResponseTimes) ForCategory(category enum.Category) string {
	var t string
	switch category {
	case enum.CategorySupport:
		t = r.Support
	case enum.CategoryBilling:
		t = r.Billing
	case enum.CategorySales:
		t = r.Sales
	}
	if t == "" {
		return r.General
	}
	return t
}

type ContactsConfig struct {
	PrimaryContact    string `yaml:"primary_contact" json:"primaryContact"`
	EscalationContact string `yaml:"escalation_contact" json:"escalationContact"`
	BillingContact    string `yaml:"billing_contact" json:"billingContact"`
}

type ClientSettings struct {
	AutoReplyEnabled        bool `yaml:"auto_reply_enabled" json:"autoReplyEnabled"`
	TeamForwardingEnabled   bool `yaml:"team_forwarding_enabled" json:"teamForwardingEnabled"`
	AIClassificationEnabled bool `yaml:"ai_classification_enabled" json:"aiClassificationEnabled"`
	EscalationEnabled       bool `yaml:"escalation_enabled" json:"escalationEnabled"`
}
