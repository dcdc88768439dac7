package customer

// Customer is the sole entity of the service. Valid is a derived view of
// CreditLevel and must satisfy Valid == (CreditLevel >= 0) at rest.
type Customer struct {
	ID          int64
	FirstName   string
	LastName    string
	Valid       bool
	CreditLevel int64
}

func NewCustomer(firstName, lastName string) *Customer {
	return &Customer{
		FirstName:   firstName,
		LastName:    lastName,
		Valid:       true,
		CreditLevel: 0,
	}
}

// IsPersisted reports whether the store has assigned an id.
func (c *Customer) IsPersisted() bool {
	return c.ID != 0
}

func (c *Customer) IsConsistent() bool {
	return c.Valid == (c.CreditLevel >= 0)
}

// UpgradeCreditLevel raises the credit level by one. It never clears Valid.
// The change is not durable until the customer is saved.
func (c *Customer) UpgradeCreditLevel() {
	c.CreditLevel++
	if c.CreditLevel >= 0 {
		c.Valid = true
	}
}

// DowngradeCreditLevel lowers the credit level by one. It never sets Valid.
// The change is not durable until the customer is saved.
func (c *Customer) DowngradeCreditLevel() {
	c.CreditLevel--
	if c.CreditLevel < 0 {
		c.Valid = false
	}
}

// Deserialize validates in and applies it to c. The id is never taken from
// input; it is assigned by the store.
func (c *Customer) Deserialize(in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}

	c.FirstName = *in.FirstName
	c.LastName = *in.LastName

	if in.hasCreditPair() {
		c.Valid = *in.Valid
		c.CreditLevel = *in.CreditLevel
	} else {
		c.Valid = true
		c.CreditLevel = 0
	}
	return nil
}

// Clone returns a detached copy.
func (c *Customer) Clone() *Customer {
	cp := *c
	return &cp
}
