package types

// SubscriptionFilter narrows subscription list queries
type SubscriptionFilter struct {
	SubscriptionIDs []string `form:"subscription_ids" json:"subscription_ids,omitempty"`
	CustomerIDs     []string `form:"customer_ids" json:"customer_ids,omitempty"`
	BusinessUnitID  string   `form:"business_unit_id" json:"business_unit_id,omitempty"`
	// ActiveOnly restricts the result to subscriptions with active=true
	ActiveOnly bool `form:"active_only" json:"active_only,omitempty"`
}

// PlanChangeFilter narrows plan change list queries
type PlanChangeFilter struct {
	SubscriptionIDs []string `json:"subscription_ids,omitempty"`
	// Processed filters on the processed flag when set
	Processed *bool `json:"processed,omitempty"`
}
