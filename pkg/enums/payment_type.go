package enums

// PaymentType distinguishes provider-settled orders from manual invoice orders.
type PaymentType string

const (
	// PaymentTypeStripe marks orders settled through a hosted checkout session.
	PaymentTypeStripe PaymentType = "stripe"
	// PaymentTypeManual marks other-country orders awaiting out-of-band payment.
	PaymentTypeManual PaymentType = "manual"
)

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}
