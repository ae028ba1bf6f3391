package domain

import "fmt"

// Policy names the stacking policies computed for every discounted quote.
type Policy string

const (
	// PolicyStandard prices the primary discount stack only.
	PolicyStandard Policy = "standard"
	// PolicyNoRefund adds the non-refundable discount on top of the primary stack.
	PolicyNoRefund Policy = "norefund"
	// PolicyCreditCard adds the credit card discount on top of the primary stack.
	PolicyCreditCard Policy = "creditcard"
)

// StackingPolicy pairs a policy name with the secondary kind it layers on the primary stack.
type StackingPolicy struct {
	Name      Policy
	Secondary DiscountKind // KindUnknown: no secondary discount
}

// DefaultPolicies is the ordered policy list quoted for every stay.
var DefaultPolicies = []StackingPolicy{
	{Name: PolicyStandard},
	{Name: PolicyNoRefund, Secondary: KindNoRefund},
	{Name: PolicyCreditCard, Secondary: KindCreditCard},
}

// PolicyByName looks a policy up in DefaultPolicies.
func PolicyByName(name string) (StackingPolicy, error) {
	for _, p := range DefaultPolicies {
		if string(p.Name) == name {
			return p, nil
		}
	}
	return StackingPolicy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}
