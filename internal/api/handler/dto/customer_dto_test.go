package dto

import (
	"customer-service/internal/domain/customer"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomerResponse(t *testing.T) {
	t.Run("unsaved customer renders null id", func(t *testing.T) {
		raw, err := json.Marshal(NewCustomerResponse(customer.NewCustomer("A", "dog")))
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":null,"firstname":"A","lastname":"dog","valid":true,"credit_level":0}`, string(raw))
	})

	t.Run("saved customer renders id", func(t *testing.T) {
		c := &customer.Customer{ID: 4, FirstName: "B", LastName: "cat", Valid: false, CreditLevel: -2}
		raw, err := json.Marshal(NewCustomerResponse(c))
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":4,"firstname":"B","lastname":"cat","valid":false,"credit_level":-2}`, string(raw))
	})
}

func TestCustomerRequest_ToInput(t *testing.T) {
	var req CustomerRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":99,"firstname":"A","lastname":"dog","credit_level":-1}`), &req))

	in := req.ToInput()
	require.NotNil(t, in.FirstName)
	assert.Equal(t, "A", *in.FirstName)
	assert.Nil(t, in.Valid)
	assert.Equal(t, int64(-1), *in.CreditLevel)
}

func TestNewCustomerListResponse_EmptyIsArray(t *testing.T) {
	raw, err := json.Marshal(NewCustomerListResponse(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
