package customer_test

import (
	"customer-service/internal/domain/customer"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCustomer(t *testing.T) {
	cust := customer.NewCustomer("Alice", "Wonderland")

	assert.NotNil(t, cust, "NewCustomer should return a non-nil customer")
	assert.Equal(t, "Alice", cust.FirstName)
	assert.Equal(t, "Wonderland", cust.LastName)
	assert.True(t, cust.Valid, "New customer should be valid")
	assert.Equal(t, int64(0), cust.CreditLevel, "New customer should start at credit level 0")
	assert.Equal(t, int64(0), cust.ID, "ID should be unset before the first save")
	assert.False(t, cust.IsPersisted())
	assert.True(t, cust.IsConsistent())
}

func TestCustomer_CreditTransitions(t *testing.T) {
	t.Run("three downgrades then one upgrade", func(t *testing.T) {
		cust := customer.NewCustomer("Bob", "Builder")

		cust.DowngradeCreditLevel()
		cust.DowngradeCreditLevel()
		cust.DowngradeCreditLevel()
		assert.Equal(t, int64(-3), cust.CreditLevel)
		assert.False(t, cust.Valid, "Negative credit level should make the customer invalid")

		cust.UpgradeCreditLevel()
		assert.Equal(t, int64(-2), cust.CreditLevel)
		assert.False(t, cust.Valid, "Still negative, customer should stay invalid")
	})

	t.Run("upgrade back to zero restores validity", func(t *testing.T) {
		cust := customer.NewCustomer("Charlie", "Chaplin")
		cust.DowngradeCreditLevel()
		assert.False(t, cust.Valid)

		cust.UpgradeCreditLevel()
		assert.Equal(t, int64(0), cust.CreditLevel)
		assert.True(t, cust.Valid)
	})

	t.Run("no ceiling on upgrades", func(t *testing.T) {
		cust := customer.NewCustomer("Diana", "Prince")
		for range 5 {
			cust.UpgradeCreditLevel()
		}
		assert.Equal(t, int64(5), cust.CreditLevel)
		assert.True(t, cust.Valid)
	})
}

func TestCustomer_InvariantHoldsAfterEveryTransition(t *testing.T) {
	for start := int64(-4); start <= 4; start++ {
		cust := &customer.Customer{FirstName: "E", LastName: "F", CreditLevel: start, Valid: start >= 0}
		for step := 0; step < 6; step++ {
			if step%3 == 0 {
				cust.UpgradeCreditLevel()
			} else {
				cust.DowngradeCreditLevel()
			}
			assert.True(t, cust.IsConsistent(), "start=%d step=%d level=%d valid=%v", start, step, cust.CreditLevel, cust.Valid)
		}
	}
}

func TestCustomer_DowngradeThenUpgradeRestoresState(t *testing.T) {
	for start := int64(-3); start <= 3; start++ {
		cust := &customer.Customer{FirstName: "G", LastName: "H", CreditLevel: start, Valid: start >= 0}

		cust.DowngradeCreditLevel()
		cust.UpgradeCreditLevel()

		assert.Equal(t, start, cust.CreditLevel)
		assert.Equal(t, start >= 0, cust.Valid)
	}
}

func TestCustomer_Deserialize(t *testing.T) {
	first, last := "Fiona", "Gallagher"

	t.Run("defaults credit pair when absent", func(t *testing.T) {
		cust := &customer.Customer{ID: 9, Valid: false, CreditLevel: -4}
		err := cust.Deserialize(customer.Input{FirstName: &first, LastName: &last})

		assert.NoError(t, err)
		assert.Equal(t, int64(9), cust.ID, "Deserialize must not touch the id")
		assert.Equal(t, first, cust.FirstName)
		assert.Equal(t, last, cust.LastName)
		assert.True(t, cust.Valid)
		assert.Equal(t, int64(0), cust.CreditLevel)
	})

	t.Run("applies consistent credit pair", func(t *testing.T) {
		valid, level := false, int64(-2)
		cust := customer.NewCustomer("", "")
		err := cust.Deserialize(customer.Input{FirstName: &first, LastName: &last, Valid: &valid, CreditLevel: &level})

		assert.NoError(t, err)
		assert.False(t, cust.Valid)
		assert.Equal(t, int64(-2), cust.CreditLevel)
	})

	t.Run("ignores a lone credit field", func(t *testing.T) {
		level := int64(-7)
		cust := customer.NewCustomer("", "")
		err := cust.Deserialize(customer.Input{FirstName: &first, LastName: &last, CreditLevel: &level})

		assert.NoError(t, err)
		assert.True(t, cust.Valid)
		assert.Equal(t, int64(0), cust.CreditLevel)
	})

	t.Run("leaves customer untouched on error", func(t *testing.T) {
		cust := customer.NewCustomer("Keep", "Me")
		err := cust.Deserialize(customer.Input{FirstName: &first})

		assert.Error(t, err)
		assert.Equal(t, "Keep", cust.FirstName)
		assert.Equal(t, "Me", cust.LastName)
	})
}

func TestCustomer_RoundTripThroughInput(t *testing.T) {
	original := &customer.Customer{ID: 4, FirstName: "Harry", LastName: "Potter", Valid: false, CreditLevel: -1}

	in := customer.Input{
		FirstName:   &original.FirstName,
		LastName:    &original.LastName,
		Valid:       &original.Valid,
		CreditLevel: &original.CreditLevel,
	}
	restored := customer.NewCustomer("", "")
	assert.NoError(t, restored.Deserialize(in))

	assert.Equal(t, original.FirstName, restored.FirstName)
	assert.Equal(t, original.LastName, restored.LastName)
	assert.Equal(t, original.Valid, restored.Valid)
	assert.Equal(t, original.CreditLevel, restored.CreditLevel)
	assert.Equal(t, int64(0), restored.ID)
}

func TestCustomer_Clone(t *testing.T) {
	cust := &customer.Customer{ID: 1, FirstName: "Ian", LastName: "Malcolm", Valid: true}
	cp := cust.Clone()
	cp.DowngradeCreditLevel()

	assert.Equal(t, int64(0), cust.CreditLevel)
	assert.True(t, cust.Valid)
	assert.Equal(t, int64(-1), cp.CreditLevel)
}
