package partner

import (
	"time"
)

// CompanyProfile describes a customer's company.
type CompanyProfile struct {
	TenantID    string `json:"tenantId,omitempty"    yaml:"tenant_id,omitempty"`
	Domain      string `json:"domain,omitempty"      yaml:"domain,omitempty"`
	CompanyName string `json:"companyName,omitempty" yaml:"company_name,omitempty"`
}

// Address is a postal address.
type Address struct {
	Country      string `json:"country,omitempty"      yaml:"country,omitempty"`
	City         string `json:"city,omitempty"         yaml:"city,omitempty"`
	AddressLine1 string `json:"addressLine1,omitempty" yaml:"address_line1,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"   yaml:"postal_code,omitempty"`
	FirstName    string `json:"firstName,omitempty"    yaml:"first_name,omitempty"`
	LastName     string `json:"lastName,omitempty"     yaml:"last_name,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"  yaml:"phone_number,omitempty"`
}

// CustomerBillingProfile holds billing details of a customer.
type CustomerBillingProfile struct {
	Email          string   `json:"email,omitempty"          yaml:"email,omitempty"`
	Culture        string   `json:"culture,omitempty"        yaml:"culture,omitempty"`
	Language       string   `json:"language,omitempty"       yaml:"language,omitempty"`
	CompanyName    string   `json:"companyName,omitempty"    yaml:"company_name,omitempty"`
	DefaultAddress *Address `json:"defaultAddress,omitempty" yaml:"default_address,omitempty"`
}

// Customer is a partner's customer.
type Customer struct {
	ID                    string                  `json:"id,omitempty"                    yaml:"id,omitempty"`
	CommerceID            string                  `json:"commerceId,omitempty"            yaml:"commerce_id,omitempty"`
	CompanyProfile        *CompanyProfile         `json:"companyProfile,omitempty"        yaml:"company_profile,omitempty"`
	BillingProfile        *CustomerBillingProfile `json:"billingProfile,omitempty"        yaml:"billing_profile,omitempty"`
	RelationshipToPartner string                  `json:"relationshipToPartner,omitempty" yaml:"relationship_to_partner,omitempty"`
	Attributes            ResourceAttributes      `json:"attributes"                      yaml:"attributes"`
}

// Subscription is a customer's subscription to an offer.
type Subscription struct {
	ID                 string             `json:"id,omitempty"                 yaml:"id,omitempty"`
	OfferID            string             `json:"offerId,omitempty"            yaml:"offer_id,omitempty"`
	OfferName          string             `json:"offerName,omitempty"          yaml:"offer_name,omitempty"`
	FriendlyName       string             `json:"friendlyName,omitempty"       yaml:"friendly_name,omitempty"`
	Quantity           int                `json:"quantity"                     yaml:"quantity"`
	UnitType           string             `json:"unitType,omitempty"           yaml:"unit_type,omitempty"`
	Status             string             `json:"status,omitempty"             yaml:"status,omitempty"`
	AutoRenewEnabled   bool               `json:"autoRenewEnabled"             yaml:"auto_renew_enabled"`
	BillingCycle       string             `json:"billingCycle,omitempty"       yaml:"billing_cycle,omitempty"`
	CreationDate       *time.Time         `json:"creationDate,omitempty"       yaml:"creation_date,omitempty"`
	EffectiveStartDate *time.Time         `json:"effectiveStartDate,omitempty" yaml:"effective_start_date,omitempty"`
	CommitmentEndDate  *time.Time         `json:"commitmentEndDate,omitempty"  yaml:"commitment_end_date,omitempty"`
	Attributes         ResourceAttributes `json:"attributes"                   yaml:"attributes"`
}

// Subscription statuses.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusSuspended = "suspended"
	SubscriptionStatusDeleted   = "deleted"
)

// Invoice is a billing invoice issued to the partner.
type Invoice struct {
	ID           string             `json:"id"                     yaml:"id"`
	InvoiceDate  *time.Time         `json:"invoiceDate,omitempty"  yaml:"invoice_date,omitempty"`
	InvoiceType  string             `json:"invoiceType,omitempty"  yaml:"invoice_type,omitempty"`
	CurrencyCode string             `json:"currencyCode,omitempty" yaml:"currency_code,omitempty"`
	TotalCharges float64            `json:"totalCharges"           yaml:"total_charges"`
	PaidAmount   float64            `json:"paidAmount"             yaml:"paid_amount"`
	PdfLink      string             `json:"pdfLink,omitempty"      yaml:"pdf_link,omitempty"`
	Attributes   ResourceAttributes `json:"attributes"             yaml:"attributes"`
}

// CustomerList is a seek-based page of customers.
type CustomerList = SeekBasedResourceCollection[Customer]

// SubscriptionList is a page of subscriptions.
type SubscriptionList = ResourceCollection[Subscription]

// InvoiceList is an offset-based page of invoices.
type InvoiceList = ResourceCollection[Invoice]
