package dto

import (
	"customer-service/internal/domain/customer"
)

// CustomerRequest is the body of POST /customers and PUT /customers/{id}.
// Absent and null fields stay nil so the domain can tell them apart from
// zero values. ID is accepted for client convenience and never applied.
type CustomerRequest struct {
	ID          *int64  `json:"id,omitempty" swaggerignore:"true"`
	FirstName   *string `json:"firstname" example:"Ada"`
	LastName    *string `json:"lastname" example:"Lovelace"`
	Valid       *bool   `json:"valid,omitempty" example:"true"`
	CreditLevel *int64  `json:"credit_level,omitempty" example:"0"`
}

func (r CustomerRequest) ToInput() customer.Input {
	return customer.Input{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Valid:       r.Valid,
		CreditLevel: r.CreditLevel,
	}
}

type CustomerResponse struct {
	ID          *int64 `json:"id" example:"1"`
	FirstName   string `json:"firstname" example:"Ada"`
	LastName    string `json:"lastname" example:"Lovelace"`
	Valid       bool   `json:"valid" example:"true"`
	CreditLevel int64  `json:"credit_level" example:"0"`
}

// NewCustomerResponse renders id as null until the customer has been saved.
func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	var id *int64
	if cust.IsPersisted() {
		v := cust.ID
		id = &v
	}

	return CustomerResponse{
		ID:          id,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		Valid:       cust.Valid,
		CreditLevel: cust.CreditLevel,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, NewCustomerResponse(c))
	}
	return resp
}
