package core

import "fmt"

// Default values substituted for absent customer context fields. Specialists
// interpolate these into prompts, so they are customer-visible strings.
const (
	DefaultAccountID     = "Unknown"
	DefaultAccountStatus = "Active"
	DefaultPlanType      = "Individual"
	DefaultAccountSince  = "2023"
	DefaultCurrentPlan   = "Standard Plan"
	DefaultLastBill      = "$0.00"
)

// CustomerContext enumerates the recognized customer context fields. Callers
// supply an opaque map at the boundary; ResolveCustomerContext converts it
// into this explicit structure exactly once, applying documented defaults for
// every absent key.
type CustomerContext struct {
	AccountID     string `json:"account_id"`
	AccountStatus string `json:"account_status"`
	PlanType      string `json:"plan_type"`
	AccountSince  string `json:"account_since"`
	CurrentPlan   string `json:"current_plan"`
	LastBill      string `json:"last_bill"`
}

// ResolveCustomerContext converts a caller-supplied map into a fully
// populated CustomerContext. A nil map yields all defaults. Non-string values
// are formatted with fmt.Sprint so numeric bill amounts survive.
func ResolveCustomerContext(raw map[string]any) CustomerContext {
	get := func(key, def string) string {
		v, ok := raw[key]
		if !ok || v == nil {
			return def
		}
		if s, ok := v.(string); ok {
			if s == "" {
				return def
			}
			return s
		}
		return fmt.Sprint(v)
	}
	return CustomerContext{
		AccountID:     get("account_id", DefaultAccountID),
		AccountStatus: get("account_status", DefaultAccountStatus),
		PlanType:      get("plan_type", DefaultPlanType),
		AccountSince:  get("account_since", DefaultAccountSince),
		CurrentPlan:   get("current_plan", DefaultCurrentPlan),
		LastBill:      get("last_bill", DefaultLastBill),
	}
}
