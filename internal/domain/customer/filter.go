package customer

import (
	"customer-service/internal/pkg/apperrors"
	"sort"
	"strconv"
)

const (
	AttrID          = "id"
	AttrFirstName   = "firstname"
	AttrLastName    = "lastname"
	AttrValid       = "valid"
	AttrCreditLevel = "credit_level"
)

// Filter is a conjunction of exact-match equalities. Nil fields do not
// constrain the result.
type Filter struct {
	ID          *int64
	FirstName   *string
	LastName    *string
	Valid       *bool
	CreditLevel *int64
}

// NewFilter builds a Filter from attribute/value pairs. Unknown attributes
// and values that do not parse for their attribute are query errors.
func NewFilter(criteria map[string]string) (Filter, error) {
	var f Filter

	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, attr := range keys {
		value := criteria[attr]
		switch attr {
		case AttrID:
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Filter{}, apperrors.NewQueryError(attr, "must be an integer")
			}
			f.ID = &id
		case AttrFirstName:
			f.FirstName = &value
		case AttrLastName:
			f.LastName = &value
		case AttrValid:
			valid, err := strconv.ParseBool(value)
			if err != nil {
				return Filter{}, apperrors.NewQueryError(attr, "must be a boolean")
			}
			f.Valid = &valid
		case AttrCreditLevel:
			level, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Filter{}, apperrors.NewQueryError(attr, "must be an integer")
			}
			f.CreditLevel = &level
		default:
			return Filter{}, apperrors.NewQueryError(attr, "unknown attribute")
		}
	}
	return f, nil
}

func (f Filter) IsEmpty() bool {
	return f.ID == nil && f.FirstName == nil && f.LastName == nil && f.Valid == nil && f.CreditLevel == nil
}

func (f Filter) Matches(c *Customer) bool {
	if c == nil {
		return false
	}
	if f.ID != nil && c.ID != *f.ID {
		return false
	}
	if f.FirstName != nil && c.FirstName != *f.FirstName {
		return false
	}
	if f.LastName != nil && c.LastName != *f.LastName {
		return false
	}
	if f.Valid != nil && c.Valid != *f.Valid {
		return false
	}
	if f.CreditLevel != nil && c.CreditLevel != *f.CreditLevel {
		return false
	}
	return true
}
